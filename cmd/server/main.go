package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"frameit/config"
	_ "frameit/docs"
	"frameit/internal/adapters/auth"
	"frameit/internal/adapters/blob"
	"frameit/internal/adapters/email"
	"frameit/internal/adapters/qr"
	delivery "frameit/internal/delivery/http"
	"frameit/internal/delivery/http/controllers"
	"frameit/internal/delivery/http/middleware"
	"frameit/internal/repository/postgres"
	"frameit/internal/repository/postgres/migrations"
	"frameit/internal/services"
)

const (
	serviceTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

// @title FrameIt API
// @version 1.0
// @description Event access and membership service: event creation with access codes and QR credentials, code verification, and attendee management.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	if err := migrations.Up(ctx, db); err != nil {
		return err
	}
	logger.Info("database ready")

	blobs, err := blob.NewS3Store(ctx, blob.Config{
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	})
	if err != nil {
		return err
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.From,
		FromName:    "FrameIt",
		SES: email.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		},
	})
	if err != nil {
		return err
	}
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	eventRepo := postgres.NewEventRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	userRepo := postgres.NewUserRepository(db)
	invitationRepo := postgres.NewEventInvitationRepository(db)

	issuer := services.NewCredentialIssuer(qr.NewRenderer(qr.DefaultSize), blobs)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	eventService := services.NewEventService(
		eventRepo, attendeeRepo, membershipRepo, userRepo, invitationRepo,
		issuer, blobs, emailService, logger, serviceTimeout,
	)
	accessService := services.NewAccessService(eventRepo)
	membershipService := services.NewMembershipService(eventRepo, attendeeRepo)
	userService := services.NewUserService(userRepo)
	grants := services.NewGrantCache()

	eventController := controllers.NewEventController(logger, eventService, grants)
	accessController := controllers.NewAccessController(logger, accessService, grants)
	attendeeController := controllers.NewAttendeeController(logger, membershipService)

	requireAuth := middleware.RequireAuth(verifier, userService, logger)
	optionalAuth := middleware.OptionalAuth(verifier, userService, logger)
	mux := delivery.NewRouter(eventController, accessController, attendeeController, requireAuth, optionalAuth)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.Port, "env", cfg.Environment)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
