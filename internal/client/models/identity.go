package models

// Identity is the authenticated principal a session acts as.
type Identity struct {
	// UserID is the opaque stable identifier assigned by the identity provider.
	UserID string `json:"userId"`

	// Email is the account's contact address.
	Email string `json:"email"`
}

// Profile is the display metadata stored remotely per identity.
type Profile struct {
	DisplayName string `json:"username"`
	Email       string `json:"email"`
}

// DefaultDisplayName is used when neither a profile nor a contact address
// can produce a usable name.
const DefaultDisplayName = "Anon"
