package auth

import (
	"github.com/kagiso-dev/thriftbales-backend/internal/users"
)

// LoginInput carries one login attempt.
type LoginInput struct {
	Email    string
	Password string
	ClientIP string
}

// RegisterAdminInput carries a new back-office account.
type RegisterAdminInput struct {
	Name     string
	Email    string
	Phone    *string
	Password string
}

// AuthResult is the token pair plus the authenticated account.
type AuthResult struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         users.UserDTO `json:"user"`
}

// RefreshResult is the rotated token pair.
type RefreshResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
