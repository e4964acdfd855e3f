package model

// SuccessResponse wraps successful API results
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse creates a success envelope
func NewSuccessResponse(message string, data interface{}) SuccessResponse {
	return SuccessResponse{Success: true, Message: message, Data: data}
}

// UserReferenceResponse is returned by every mutating command
type UserReferenceResponse struct {
	UserReference string `json:"user_reference"`
}

// UserResponse exposes the derived full name next to the stored fields
type UserResponse struct {
	*User
	FullName string `json:"full_name"`
}

// ToResponse converts a User for the wire
func (u *User) ToResponse() UserResponse {
	return UserResponse{User: u, FullName: u.FullName()}
}

// PageResponse is a page of users
type PageResponse struct {
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Users []UserResponse `json:"users"`
}

// DeleteResponse reports whether a delete changed anything
type DeleteResponse struct {
	UserReference string `json:"user_reference"`
	Deleted       bool   `json:"deleted"`
	Soft          bool   `json:"soft"`
}
