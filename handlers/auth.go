package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/attendsys/attendsysbackend/models"
	"github.com/attendsys/attendsysbackend/repository"
)

const jwtExpirationHours = 24

type AuthHandler struct {
	UserRepo  repository.UserRepository
	JWTSecret []byte
}

func NewAuthHandler(userRepo repository.UserRepository, jwtSecret string) *AuthHandler {
	return &AuthHandler{UserRepo: userRepo, JWTSecret: []byte(jwtSecret)}
}

type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid request payload")
		return
	}

	user, err := h.UserRepo.GetByUsername(payload.Username)
	if err != nil {
		WriteAPIError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}

	if !user.CheckPassword(payload.Password) {
		WriteAPIError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}

	expirationTime := time.Now().Add(jwtExpirationHours * time.Hour)
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(user.ID),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "attendsysbackend",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.JWTSecret)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "token_generation_failed", "Failed to generate token")
		return
	}

	userForResponse := *user
	userForResponse.PasswordHash = ""

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     tokenString,
		User:      userForResponse,
		ExpiresAt: expirationTime,
	})
}

// CurrentUser retrieves the authenticated user from the request context.
// This handler should be protected by the AuthMiddleware.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok || user == nil {
		WriteAPIError(w, http.StatusInternalServerError, "context_error", "Could not retrieve user from context")
		return
	}

	userForResponse := *user
	userForResponse.PasswordHash = ""

	writeJSON(w, http.StatusOK, userForResponse)
}

// EnsureAdminUser creates the bootstrap admin account when the user table is
// empty, so a fresh deployment can log in. Credentials come from
// ADMIN_USERNAME / ADMIN_PASSWORD with development defaults.
func EnsureAdminUser(userRepo repository.UserRepository, username, password string) error {
	count, err := userRepo.Count()
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := &models.User{Username: username}
	if err := admin.SetPassword(password); err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}
	if err := userRepo.Create(admin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	log.Printf("Created bootstrap admin user '%s'. Change its password before production use.", username)
	return nil
}
