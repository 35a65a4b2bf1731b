package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/chatify/chatify-api/internal/auth"
	"github.com/chatify/chatify-api/internal/config"
	"github.com/chatify/chatify-api/internal/model"
	"github.com/chatify/chatify-api/internal/repository"
	"github.com/chatify/chatify-api/internal/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, error)
	Login(ctx context.Context, params LoginParams) (*auth.Tokens, *model.User, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type authUsecase struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	verification VerificationUsecase
	jwtAuth      auth.JWTAuthenticator
	cfg          *config.Config
	logger       *zerolog.Logger
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	verification VerificationUsecase,
	jwtAuth auth.JWTAuthenticator,
	cfg *config.Config,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		verification: verification,
		jwtAuth:      jwtAuth,
		cfg:          cfg,
		logger:       logger,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	// A missed email is not fatal to registration; the user can ask for a
	// resend at any time.
	if err := u.verification.ResendVerificationCode(ctx, user.Email); err != nil {
		u.logger.Error().Err(err).Str("email", user.Email).Msg("failed to issue verification code")
	}

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*auth.Tokens, *model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrInvalidCredentials
		}

		return nil, nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, nil, err
	} else if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	if err := u.userRepo.UpdateLastLogin(ctx, user.ID.Hex()); err != nil {
		return nil, nil, err
	}

	tokens, err := u.createAuthSession(ctx, user.ID.Hex())
	if err != nil {
		return nil, nil, err
	}

	return tokens, user, nil
}

func (u *authUsecase) createAuthSession(ctx context.Context, userID string) (*auth.Tokens, error) {
	session, err := u.sessionRepo.CreateSession(ctx, &model.Session{UserID: userID})
	if err != nil {
		return nil, err
	}

	accessToken, err := u.generateToken(
		userID,
		session.ID.Hex(),
		u.cfg.Token.AccessTokenSecret,
		u.cfg.Token.AccessTokenExpiresIn,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.generateToken(
		userID,
		session.ID.Hex(),
		u.cfg.Token.RefreshTokenSecret,
		u.cfg.Token.RefreshTokenExpiresIn,
	)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if _, err := u.sessionRepo.UpdateTokens(ctx, session.ID.Hex(), repository.UpdateTokensParams{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(u.cfg.Token.AccessTokenExpiresIn),
		RefreshTokenExpiresAt: now.Add(u.cfg.Token.RefreshTokenExpiresIn),
	}); err != nil {
		return nil, err
	}

	return &auth.Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (u *authUsecase) generateToken(userID, sessionID, secret string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := auth.JWTClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    u.cfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{u.cfg.Token.Issuer},
		},
	}

	token, err := u.jwtAuth.GenerateToken(claims, secret)
	if err != nil {
		return "", err
	}

	return token, nil
}
