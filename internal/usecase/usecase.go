// Package usecase implements the account flows: registration, login, email
// verification, email change and password reset.
package usecase

import "errors"

// Mailer sends account emails. Delivery failures during an issue step are
// logged and swallowed; the issued code stays valid and the user recovers by
// requesting a resend.
type Mailer interface {
	SendVerificationCode(to, username, code string) error
	SendEmailChangeCode(to, username, newEmail, code string) error
	SendPasswordResetCode(to, username, code string) error
}

// ErrUserNotFound is returned when the addressed user does not exist.
var ErrUserNotFound = errors.New("user not found")
