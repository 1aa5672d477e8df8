package models

// Identity is what the external identity provider asserts about a
// person after token verification.
type Identity struct {
	ExternalID string
	Email      string
	FullName   string
}
