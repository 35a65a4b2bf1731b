package auth

import "github.com/golang-jwt/jwt/v5"

// JWTClaims are the claims carried by access and refresh tokens.
type JWTClaims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Tokens is an access/refresh token pair returned by login.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
