package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mmynk/volunteermap/internal/models"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)
	user := &models.User{ID: "user-1", Email: "ada@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ada@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	other := NewJWTManager("another-secret", time.Hour)
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.Generate(&models.User{ID: "u"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", time.Hour)
	m.now = func() time.Time { return issued }
	token, err := m.Generate(&models.User{ID: "u"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	tests := []struct {
		name  string
		token string
		now   time.Time
		want  bool
	}{
		{"fresh token", token, issued.Add(30 * time.Minute), false},
		{"at expiry", token, issued.Add(time.Hour), true},
		{"after expiry", token, issued.Add(2 * time.Hour), true},
		{"empty token", "", issued, true},
		{"garbage", "not.a.jwt", issued, true},
		{"no exp claim", noExp, issued, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenExpired(tt.token, tt.now); got != tt.want {
				t.Errorf("TokenExpired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		email    string
		password string
		wantErr  error
	}{
		{"ada@example.com", "secret", nil},
		{"ada@example.com", "short", ErrPasswordTooShort},
		{"ada@example", "secret1", ErrInvalidEmail},
		{"not-an-email", "secret1", ErrInvalidEmail},
		{"Ada <ada@example.com>", "secret1", ErrInvalidEmail},
		{"", "secret1", ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if err := ValidateLogin(tt.email, tt.password); err != tt.wantErr {
				t.Errorf("ValidateLogin(%q, %q) = %v, want %v", tt.email, tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	if got := SanitizeEmail("  Ada@Example.COM \n"); got != "ada@example.com" {
		t.Errorf("SanitizeEmail = %q", got)
	}
}

// memoryUsers is an in-memory UserStorage.
type memoryUsers struct {
	byEmail map[string]*models.User
}

func (m *memoryUsers) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "id-" + user.Email
	}
	c := *user
	m.byEmail[user.Email] = &c
	return nil
}

func (m *memoryUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(&memoryUsers{byEmail: map[string]*models.User{}})

	user, err := a.Register(ctx, models.User{Email: " Grace@Example.com", Name: models.Name{First: "Grace"}}, "hopper1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "grace@example.com" {
		t.Errorf("expected sanitized email, got %q", user.Email)
	}
	if user.PasswordHash == "" || strings.Contains(user.PasswordHash, "hopper1") {
		t.Error("expected password to be hashed")
	}

	if _, err := a.Register(ctx, models.User{Email: "grace@example.com"}, "another1"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
	if _, err := a.Register(ctx, models.User{Email: "new@example.com"}, "123"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}

	got, err := a.Authenticate(ctx, "GRACE@example.com", "hopper1")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated wrong user: %s", got.ID)
	}

	if _, err := a.Authenticate(ctx, "grace@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "hopper1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}
