package auth

import (
	"context"

	"github.com/mmynk/volunteermap/internal/models"
)

// Authenticator defines the interface for server-side authentication implementations.
// The development API uses it behind POST /auth and POST /users.
type Authenticator interface {
	// Register creates a new account for the given profile and credential.
	// The profile's Email must be set; ID and CreatedAt are assigned by the store.
	Register(ctx context.Context, profile models.User, credential string) (*models.User, error)

	// Authenticate verifies the credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
