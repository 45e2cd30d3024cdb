package devapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mmynk/volunteermap/internal/auth"
	"github.com/mmynk/volunteermap/internal/models"
)

// registerRequest is the body of POST /users.
type registerRequest struct {
	Name     models.Name `json:"name"`
	Mobile   string      `json:"mobile"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.internalError(w, "Failed to list users", err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

// register creates an account and logs it in.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name.First) == "" {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "First name is required")
		return
	}

	profile := models.User{Name: req.Name, Mobile: req.Mobile, Email: req.Email}
	user, err := s.authenticator.Register(r.Context(), profile, req.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			s.writeError(w, http.StatusConflict, CodeEmailExists, "An account with this email already exists")
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrPasswordTooShort):
			s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		default:
			s.internalError(w, "Failed to register user", err)
		}
		return
	}

	s.respondWithToken(w, http.StatusCreated, user)
	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
}

// authenticate exchanges credentials for the user record and an access token.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeBody(w, r, &creds); err != nil {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request: "+err.Error())
		return
	}
	if creds.Email == "" || creds.Password == "" {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "Email and password are required")
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", creds.Email, "error", err)
		s.writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "Invalid email or password")
		return
	}

	s.respondWithToken(w, http.StatusOK, user)
	s.logger.Info("User logged in successfully", "user_id", user.ID)
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.internalError(w, "Failed to generate token", err)
		return
	}
	s.writeJSON(w, status, models.AuthResponse{User: *user, AccessToken: token})
}
