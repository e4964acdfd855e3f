package generic

// Entity is an interface that all stored models must implement.
// Documents are addressed by a string reference rather than the Mongo _id.
type Entity interface {
	GetReference() string
}
