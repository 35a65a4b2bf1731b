package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/chatify/chatify-api/internal/code"
	"github.com/chatify/chatify-api/internal/repository"
)

// VerificationUsecase defines the business logic for email verification at signup.
type VerificationUsecase interface {
	// GenerateVerificationCode issues a fresh code for the user, overwriting
	// any previous pending code, and returns it for delivery.
	GenerateVerificationCode(ctx context.Context, email string) (string, error)

	// VerifyCode confirms a previously issued code and marks the email verified.
	VerifyCode(ctx context.Context, email, verificationCode string) error

	// ResendVerificationCode issues a fresh code and emails it to the user.
	ResendVerificationCode(ctx context.Context, email string) error
}

var (
	ErrEmailAlreadyVerified = errors.New("email is already verified")
	ErrInvalidCode          = errors.New("invalid verification code")
)

type verificationUsecase struct {
	userRepo repository.UserRepository
	mailer   Mailer
	logger   *zerolog.Logger
}

// NewVerificationUsecase creates a new instance of VerificationUsecase.
func NewVerificationUsecase(
	userRepo repository.UserRepository,
	mailer Mailer,
	logger *zerolog.Logger,
) VerificationUsecase {
	return &verificationUsecase{
		userRepo: userRepo,
		mailer:   mailer,
		logger:   logger,
	}
}

func (u *verificationUsecase) GenerateVerificationCode(ctx context.Context, email string) (string, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if user.Verified {
		return "", ErrEmailAlreadyVerified
	}

	verificationCode, expiresAt, err := code.Generate()
	if err != nil {
		return "", err
	}

	if err := u.userRepo.SetVerificationCode(ctx, email, verificationCode, expiresAt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	return verificationCode, nil
}

func (u *verificationUsecase) VerifyCode(ctx context.Context, email, verificationCode string) error {
	if !code.IsWellFormed(verificationCode) {
		return ErrInvalidCode
	}

	if _, err := u.userRepo.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	// Conditional update: only applies while the stored code still matches
	// and is unexpired, so a code cannot be confirmed twice.
	if _, err := u.userRepo.ConfirmVerification(ctx, email, verificationCode, time.Now()); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidCode
		}
		return err
	}

	return nil
}

func (u *verificationUsecase) ResendVerificationCode(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	verificationCode, err := u.GenerateVerificationCode(ctx, email)
	if err != nil {
		return err
	}

	if err := u.mailer.SendVerificationCode(user.Email, user.Username, verificationCode); err != nil {
		u.logger.Error().Err(err).Str("email", user.Email).Msg("failed to send verification code")
	}

	return nil
}
