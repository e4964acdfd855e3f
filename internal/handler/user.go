package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"userhub/internal/domainerr"
	"userhub/internal/middleware"
	"userhub/internal/model"
	"userhub/internal/validation"
	"userhub/pkg/util"

	"github.com/gin-gonic/gin"
)

// UserOrchestrator is the command and query surface the handlers drive.
type UserOrchestrator interface {
	CreateUser(ctx context.Context, req model.CreateUserRequest, actor string) (string, error)
	UpdateUser(ctx context.Context, ref string, req model.UpdateUserRequest, actor string) (string, error)
	AddUserToOrganisation(ctx context.Context, ref string, req model.AddOrganisationRequest, actor string) (string, error)
	RemoveUserFromOrganisation(ctx context.Context, ref string, req model.RemoveOrganisationRequest, actor string) (string, error)
	GetUserByReference(ctx context.Context, ref string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	FindUsers(ctx context.Context, query model.UserQuery, page int) ([]*model.User, error)
	DeleteUser(ctx context.Context, ref, actor string) (bool, error)
	SoftDeleteUser(ctx context.Context, ref, actor string) (bool, error)
	ReplayParked(ctx context.Context, limit int) (int, int64, error)
	ConsentTemplate() map[string]bool
	PageSize() int
}

type UserHandler struct {
	users  UserOrchestrator
	walker *validation.Walker
}

// NewUserHandler creates a new User handler
func NewUserHandler(users UserOrchestrator, walker *validation.Walker) *UserHandler {
	if walker == nil {
		walker = validation.DefaultWalker()
	}
	return &UserHandler{users: users, walker: walker}
}

// Create registers a user
// @Router /api/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req model.CreateUserRequest
	check := func() error { return validation.CreateUser(req, h.users.ConsentTemplate()) }
	if err := decodeStrict(c, h.walker, &req, check); err != nil {
		respondError(c, err)
		return
	}
	ref, err := h.users.CreateUser(c.Request.Context(), req, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewSuccessResponse("User created", model.UserReferenceResponse{UserReference: ref}))
}

// Update overwrites the caller's own profile
// @Router /api/users/{ref} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req model.UpdateUserRequest
	check := func() error {
		return validation.Join(validation.UUID(c.Param("ref")), validation.UpdateUser(req, h.users.ConsentTemplate()))
	}
	if err := decodeStrict(c, h.walker, &req, check); err != nil {
		respondError(c, err)
		return
	}
	ref, err := h.users.UpdateUser(c.Request.Context(), c.Param("ref"), req, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("User updated", model.UserReferenceResponse{UserReference: ref}))
}

// AddOrganisation adds a membership
// @Router /api/users/{ref}/organisations [post]
func (h *UserHandler) AddOrganisation(c *gin.Context) {
	var req model.AddOrganisationRequest
	check := func() error {
		return validation.Join(validation.UUID(c.Param("ref")), validation.Organisation(req.Organisation))
	}
	if err := decodeStrict(c, h.walker, &req, check); err != nil {
		respondError(c, err)
		return
	}
	ref, err := h.users.AddUserToOrganisation(c.Request.Context(), c.Param("ref"), req, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("User added to organisation", model.UserReferenceResponse{UserReference: ref}))
}

// RemoveOrganisation drops a membership
// @Router /api/users/{ref}/organisations/{orgRef} [delete]
func (h *UserHandler) RemoveOrganisation(c *gin.Context) {
	req := model.RemoveOrganisationRequest{OrganisationReference: c.Param("orgRef")}
	ref, err := h.users.RemoveUserFromOrganisation(c.Request.Context(), c.Param("ref"), req, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("User removed from organisation", model.UserReferenceResponse{UserReference: ref}))
}

// Get returns one user
// @Router /api/users/{ref} [get]
func (h *UserHandler) Get(c *gin.Context) {
	h.respondUser(c, c.Param("ref"))
}

// Current returns the user named by X-User-Reference
// @Router /api/users/current [get]
func (h *UserHandler) Current(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor == "" {
		respondError(c, domainerr.New(domainerr.KindUnAuthorized, "current user reference is required"))
		return
	}
	h.respondUser(c, actor)
}

func (h *UserHandler) respondUser(c *gin.Context, ref string) {
	user, err := h.users.GetUserByReference(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("User found", user.ToResponse()))
}

// GetByEmail looks a user up by address
// @Router /api/users/email/{email} [get]
func (h *UserHandler) GetByEmail(c *gin.Context) {
	user, err := h.users.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondError(c, domainerr.New(domainerr.KindNotFound, "no user with this email"))
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("User found", user.ToResponse()))
}

// List returns a page of users, optionally filtered
// @Router /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	page, err := pageParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	query := model.UserQuery{
		FirstName:             c.Query("first_name"),
		LastName:              c.Query("last_name"),
		Email:                 c.Query("email"),
		OrganisationReference: c.Query("organisation_reference"),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active, perr := strconv.ParseBool(raw)
		if perr != nil {
			respondError(c, domainerr.WithFields(domainerr.KindValidation, "invalid is_active",
				map[string][]string{"is_active": {"is_active must be true or false"}}))
			return
		}
		query.IsActive = &active
	}

	users, err := h.users.FindUsers(c.Request.Context(), query, page)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]model.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Users", model.PageResponse{
		Page:  page,
		Size:  h.users.PageSize(),
		Users: out,
	}))
}

// Delete removes a user; ?soft=true deactivates instead
// @Router /api/users/{ref} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	soft, err := strconv.ParseBool(strings.TrimSpace(c.DefaultQuery("soft", "false")))
	if err != nil {
		respondError(c, domainerr.WithFields(domainerr.KindValidation, "invalid soft",
			map[string][]string{"soft": {"soft " + strconv.Quote(c.Query("soft")) + " must be true or false"}}))
		return
	}
	ref := c.Param("ref")

	var deleted bool
	if soft {
		deleted, err = h.users.SoftDeleteUser(c.Request.Context(), ref, middleware.Actor(c))
	} else {
		deleted, err = h.users.DeleteUser(c.Request.Context(), ref, middleware.Actor(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "User deleted"
	if !deleted {
		msg = "Nothing to delete"
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(msg, model.DeleteResponse{
		UserReference: util.CanonicalReference(ref),
		Deleted:       deleted,
		Soft:          soft,
	}))
}

// ReplayEvents republishes parked events
// @Router /api/events/replay [post]
func (h *UserHandler) ReplayEvents(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, domainerr.WithFields(domainerr.KindValidation, "invalid limit",
				map[string][]string{"limit": {"limit must be a non-negative integer"}}))
			return
		}
		limit = n
	}
	n, remaining, err := h.users.ReplayParked(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Replayed parked events", gin.H{"replayed": n, "remaining": remaining}))
}
