package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/chatify/chatify-api/internal/code"
	"github.com/chatify/chatify-api/internal/repository"
	"github.com/chatify/chatify-api/internal/security"
)

// PasswordResetUsecase defines the business logic for password reset codes.
type PasswordResetUsecase interface {
	// RequestPasswordReset issues a reset code, overwriting any previous
	// pending reset, and emails it to the user.
	RequestPasswordReset(ctx context.Context, email string) error

	// VerifyPasswordResetCode checks a reset code without consuming it, so a
	// client can validate the code before submitting a new password.
	VerifyPasswordResetCode(ctx context.Context, email, resetCode string) error

	// ResetPassword consumes the reset code and sets the new password.
	ResetPassword(ctx context.Context, email, resetCode, newPassword string) error
}

type passwordResetUsecase struct {
	userRepo repository.UserRepository
	mailer   Mailer
	logger   *zerolog.Logger
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	mailer Mailer,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo: userRepo,
		mailer:   mailer,
		logger:   logger,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	resetCode, expiresAt, err := code.Generate()
	if err != nil {
		return err
	}

	if err := u.userRepo.SetPasswordResetCode(ctx, email, resetCode, expiresAt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if err := u.mailer.SendPasswordResetCode(user.Email, user.Username, resetCode); err != nil {
		u.logger.Error().Err(err).Str("email", user.Email).Msg("failed to send password reset code")
	}

	return nil
}

func (u *passwordResetUsecase) VerifyPasswordResetCode(ctx context.Context, email, resetCode string) error {
	if !code.IsWellFormed(resetCode) {
		return ErrInvalidOrExpiredCode
	}

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidOrExpiredCode
		}
		return err
	}

	if user.PasswordResetCode == "" || user.PasswordResetCode != resetCode {
		return ErrInvalidOrExpiredCode
	}

	if !time.Now().Before(user.PasswordResetExpiresAt) {
		return ErrInvalidOrExpiredCode
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, email, resetCode, newPassword string) error {
	if err := u.VerifyPasswordResetCode(ctx, email, resetCode); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// Conditional update: a concurrent reset that consumed the code first
	// leaves nothing to match, so this attempt fails instead of replaying.
	if _, err := u.userRepo.ConsumePasswordResetCode(ctx, email, resetCode, passwordHash, time.Now()); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidOrExpiredCode
		}
		return err
	}

	return nil
}
