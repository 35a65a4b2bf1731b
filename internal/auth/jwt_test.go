package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/chatify/chatify-api/internal/auth"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("chatify", "chatify")

	now := time.Now()
	claims := auth.JWTClaims{
		UserID:    "user-1",
		SessionID: "session-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "chatify",
			Audience:  jwt.ClaimStrings{"chatify"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}

	tokenStr, err := jwtAuth.GenerateToken(claims, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	parsed := auth.JWTClaims{}
	_, err = jwtAuth.ValidateTokenWithClaims(tokenStr, testSecret, &parsed)
	require.NoError(t, err)
	require.Equal(t, "user-1", parsed.UserID)
	require.Equal(t, "session-1", parsed.SessionID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("chatify", "chatify")

	now := time.Now()
	claims := auth.JWTClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "chatify",
			Audience:  jwt.ClaimStrings{"chatify"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}

	tokenStr, err := jwtAuth.GenerateToken(claims, testSecret)
	require.NoError(t, err)

	_, err = jwtAuth.ValidateTokenWithClaims(tokenStr, "other-secret", &auth.JWTClaims{})
	require.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("chatify", "chatify")

	claims := auth.JWTClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "chatify",
			Audience:  jwt.ClaimStrings{"chatify"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}

	tokenStr, err := jwtAuth.GenerateToken(claims, testSecret)
	require.NoError(t, err)

	_, err = jwtAuth.ValidateTokenWithClaims(tokenStr, testSecret, &auth.JWTClaims{})
	require.Error(t, err)
}
