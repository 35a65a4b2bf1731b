package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/chatify/chatify-api/internal/model"
	"github.com/chatify/chatify-api/internal/payload"
	"github.com/chatify/chatify-api/internal/usecase"
	"github.com/chatify/chatify-api/internal/validator"
)

// UserHTTPHandler exposes the account flows over HTTP.
type UserHTTPHandler struct {
	authUsecase          usecase.AuthUsecase
	verificationUsecase  usecase.VerificationUsecase
	emailChangeUsecase   usecase.EmailChangeUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	userUsecase          usecase.UserUsecase
	validate             *validator.Validator
	logger               *zerolog.Logger
}

// NewUserHTTPHandler creates a new UserHTTPHandler instance.
func NewUserHTTPHandler(
	authUsecase usecase.AuthUsecase,
	verificationUsecase usecase.VerificationUsecase,
	emailChangeUsecase usecase.EmailChangeUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	userUsecase usecase.UserUsecase,
	validate *validator.Validator,
	logger *zerolog.Logger,
) *UserHTTPHandler {
	return &UserHTTPHandler{
		authUsecase:          authUsecase,
		verificationUsecase:  verificationUsecase,
		emailChangeUsecase:   emailChangeUsecase,
		passwordResetUsecase: passwordResetUsecase,
		userUsecase:          userUsecase,
		validate:             validate,
		logger:               logger,
	}
}

func (h *UserHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *UserHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	tokens, user, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, payload.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         toUserResponse(user),
	})
}

func (h *UserHTTPHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req payload.VerifyEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.verificationUsecase.VerifyCode(r.Context(), req.Email, req.Code); err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, payload.MessageResponse{Message: "Email successfully verified"})
}

func (h *UserHTTPHandler) ResendEmail(w http.ResponseWriter, r *http.Request) {
	var req payload.ResendEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.verificationUsecase.ResendVerificationCode(r.Context(), req.Email); err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, payload.MessageResponse{Message: "New code sent!"})
}

func (h *UserHTTPHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req payload.ChangeEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.emailChangeUsecase.RequestEmailChange(r.Context(), userID, req.NewEmail); err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, payload.MessageResponse{
		Message: "Confirmation code sent to your current email address",
	})
}

func (h *UserHTTPHandler) ConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req payload.ConfirmEmailChangeRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.emailChangeUsecase.ConfirmEmailChange(r.Context(), userID, req.Code)
	if err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, payload.MessageResponse{
		Message: "Email successfully changed to " + user.Email,
	})
}

func (h *UserHTTPHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req payload.RequestPasswordResetRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, payload.MessageResponse{Message: "Password reset code sent"})
}

func (h *UserHTTPHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req payload.VerifyResetCodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.passwordResetUsecase.VerifyPasswordResetCode(r.Context(), req.Email, req.Code); err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, payload.MessageResponse{Message: "Code is valid"})
}

func (h *UserHTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, payload.MessageResponse{Message: "Password successfully reset"})
}

func (h *UserHTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userUsecase.GetUser(r.Context(), userID)
	if err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHTTPHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req payload.UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.Username == nil {
		respondError(w, http.StatusBadRequest, "no profile fields to update")
		return
	}

	user, err := h.userUsecase.UpdateProfile(r.Context(), userID, usecase.UpdateProfileParams{
		Username: req.Username,
	})
	if err != nil {
		h.respondUsecaseError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// decode parses and validates the JSON request body. It writes the error
// response itself and reports whether the handler should continue.
func (h *UserHTTPHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if messages := h.validate.Struct(req); messages != nil {
		respondValidationErrors(w, messages)
		return false
	}

	return true
}

func (h *UserHTTPHandler) respondUsecaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, usecase.ErrUserAlreadyExists):
		respondError(w, http.StatusBadRequest, "user already exists")
	case errors.Is(err, usecase.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, usecase.ErrEmailAlreadyVerified):
		respondError(w, http.StatusBadRequest, "email is already verified")
	case errors.Is(err, usecase.ErrInvalidCode):
		respondError(w, http.StatusBadRequest, "invalid code")
	case errors.Is(err, usecase.ErrInvalidEmail):
		respondError(w, http.StatusBadRequest, "invalid email address")
	case errors.Is(err, usecase.ErrEmailAlreadyInUse):
		respondError(w, http.StatusConflict, "email is already in use")
	case errors.Is(err, usecase.ErrNoPendingEmailChange):
		respondError(w, http.StatusBadRequest, "no pending email change request")
	case errors.Is(err, usecase.ErrInvalidOrExpiredCode):
		respondError(w, http.StatusBadRequest, "invalid or expired code")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}

func toUserResponse(user *model.User) payload.UserResponse {
	return payload.UserResponse{
		ID:        user.ID.Hex(),
		Username:  user.Username,
		Email:     user.Email,
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt,
	}
}
