package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminLoginRequest carries the coordinator shared secret.
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginRequest holds credentials for authenticating a member.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// SignupRequest registers a new member account.
type SignupRequest struct {
	Name      string  `json:"name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
	Phone     *string `json:"phone,omitempty"`
	IP        string  `json:"-"`
	UserAgent string  `json:"-"`
}

// LoginResponse returns the issued tokens and session info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated session in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email,omitempty"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
	MemberID string   `json:"member_id,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email,omitempty"`
	FullName string   `json:"full_name"`
	MemberID string   `json:"member_id,omitempty"`
	jwt.RegisteredClaims
}
