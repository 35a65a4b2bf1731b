package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/chatify/chatify-api/internal/auth"
	"github.com/chatify/chatify-api/internal/config"
	"github.com/chatify/chatify-api/internal/handler"
	"github.com/chatify/chatify-api/internal/mailer"
	"github.com/chatify/chatify-api/internal/repository"
	"github.com/chatify/chatify-api/internal/usecase"
	"github.com/chatify/chatify-api/internal/validator"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Load(&logger)

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.MongoDatabase)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	sessionRepo := repository.NewSessionMongoRepository(db)

	accountMailer := mailer.NewMailer(&logger)
	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)

	verificationUsecase := usecase.NewVerificationUsecase(userRepo, accountMailer, &logger)
	emailChangeUsecase := usecase.NewEmailChangeUsecase(userRepo, accountMailer, &logger)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(userRepo, accountMailer, &logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, sessionRepo, verificationUsecase, jwtAuth, cfg, &logger)
	userUsecase := usecase.NewUserUsecase(userRepo)

	validate, err := validator.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create validator")
	}

	userHandler := handler.NewUserHTTPHandler(
		authUsecase,
		verificationUsecase,
		emailChangeUsecase,
		passwordResetUsecase,
		userUsecase,
		validate,
		&logger,
	)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewRouter(userHandler, jwtAuth, cfg, &logger),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting HTTP server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down HTTP server")
	}

	if err := client.Disconnect(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to disconnect from mongodb")
	}
}
