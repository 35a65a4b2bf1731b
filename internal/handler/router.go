// Package handler wires the account flows to the HTTP router.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/chatify/chatify-api/internal/auth"
	"github.com/chatify/chatify-api/internal/config"
	"github.com/chatify/chatify-api/internal/payload"
)

// NewRouter builds the HTTP routing table.
func NewRouter(
	userHandler *UserHTTPHandler,
	jwtAuth auth.JWTAuthenticator,
	cfg *config.Config,
	logger *zerolog.Logger,
) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(RequestID(logger))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, payload.MessageResponse{Message: "API is running"})
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/verify-email", userHandler.VerifyEmail)
		r.Post("/resend-email", userHandler.ResendEmail)
		r.Post("/request-password-reset", userHandler.RequestPasswordReset)
		r.Post("/verify-reset-code", userHandler.VerifyResetCode)
		r.Post("/reset-password", userHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(jwtAuth, cfg.Token.AccessTokenSecret))

			r.Get("/me", userHandler.Me)
			r.Patch("/me", userHandler.UpdateProfile)
			r.Post("/change-email", userHandler.ChangeEmail)
			r.Post("/confirm-email-change", userHandler.ConfirmEmailChange)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found")
	})

	return r
}
