package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/chatify/chatify-api/internal/code"
	"github.com/chatify/chatify-api/internal/model"
	"github.com/chatify/chatify-api/internal/repository"
)

// EmailChangeUsecase defines the business logic for changing an account's
// email address. The confirmation code is delivered to the current address,
// not the requested one.
type EmailChangeUsecase interface {
	// RequestEmailChange stores a pending change to newEmail and emails a
	// confirmation code to the user's current address.
	RequestEmailChange(ctx context.Context, userID, newEmail string) error

	// ConfirmEmailChange swaps the account email to the pending address and
	// clears the pending request in one atomic update.
	ConfirmEmailChange(ctx context.Context, userID, changeCode string) (*model.User, error)
}

var (
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrEmailAlreadyInUse    = errors.New("email is already in use")
	ErrNoPendingEmailChange = errors.New("no pending email change request")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
)

type emailChangeUsecase struct {
	userRepo repository.UserRepository
	mailer   Mailer
	validate *validator.Validate
	logger   *zerolog.Logger
}

// NewEmailChangeUsecase creates a new instance of EmailChangeUsecase.
func NewEmailChangeUsecase(
	userRepo repository.UserRepository,
	mailer Mailer,
	logger *zerolog.Logger,
) EmailChangeUsecase {
	return &emailChangeUsecase{
		userRepo: userRepo,
		mailer:   mailer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (u *emailChangeUsecase) RequestEmailChange(ctx context.Context, userID, newEmail string) error {
	if err := u.validate.Var(newEmail, "required,email"); err != nil {
		return ErrInvalidEmail
	}

	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if _, err := u.userRepo.GetUserByEmail(ctx, newEmail); err == nil {
		return ErrEmailAlreadyInUse
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	changeCode, expiresAt, err := code.Generate()
	if err != nil {
		return err
	}

	if err := u.userRepo.SetEmailChangeCode(ctx, userID, newEmail, changeCode, expiresAt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	// The code goes to the current address so a hijacked session alone is
	// not enough to take over the account.
	if err := u.mailer.SendEmailChangeCode(user.Email, user.Username, newEmail, changeCode); err != nil {
		u.logger.Error().Err(err).Str("email", user.Email).Msg("failed to send email change code")
	}

	return nil
}

func (u *emailChangeUsecase) ConfirmEmailChange(
	ctx context.Context,
	userID, changeCode string,
) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.PendingEmail == "" || user.EmailChangeCode == "" {
		return nil, ErrNoPendingEmailChange
	}

	if !code.IsWellFormed(changeCode) {
		return nil, ErrInvalidOrExpiredCode
	}

	updated, err := u.userRepo.ConfirmEmailChange(ctx, userID, user.PendingEmail, changeCode, time.Now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, err
	}

	return updated, nil
}
