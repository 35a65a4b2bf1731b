package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a user account. The three pending-code groups
// (verification, email change, password reset) are either fully unset or
// fully set; at most one pending operation of each kind exists at a time.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Username     string        `bson:"username"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password_hash"`
	Verified     bool          `bson:"verified"`

	VerificationCode          string    `bson:"verification_code,omitempty"`
	VerificationCodeExpiresAt time.Time `bson:"verification_code_expires_at,omitempty"`

	PendingEmail             string    `bson:"pending_email,omitempty"`
	EmailChangeCode          string    `bson:"email_change_code,omitempty"`
	EmailChangeCodeExpiresAt time.Time `bson:"email_change_code_expires_at,omitempty"`

	PasswordResetCode      string    `bson:"password_reset_code,omitempty"`
	PasswordResetExpiresAt time.Time `bson:"password_reset_expires_at,omitempty"`

	LastLoginAt time.Time `bson:"last_login_at,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}
