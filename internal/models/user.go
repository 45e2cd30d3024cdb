package models

// Name is a user's display name split into its parts.
type Name struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// Full returns "First Last".
func (n Name) Full() string {
	switch {
	case n.First == "":
		return n.Last
	case n.Last == "":
		return n.First
	}
	return n.First + " " + n.Last
}

// User represents a registered account.
// The client only ever holds read-only copies.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Name is the display name.
	Name Name `json:"name"`

	// Mobile is the contact phone number shown to volunteers.
	Mobile string `json:"mobile"`

	// Email is the login address (unique).
	Email string `json:"email,omitempty"`

	// PasswordHash is only populated server-side and never serialized.
	PasswordHash string `json:"-"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"createdAt,omitempty"`
}

// Credentials is the body of an authentication request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by a successful authentication.
type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}
