package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventmenu/config"
	_ "eventmenu/docs"
	"eventmenu/internal/adapters/auth"
	"eventmenu/internal/adapters/email"
	"eventmenu/internal/adapters/rabbitmq"
	delivery "eventmenu/internal/delivery/http"
	"eventmenu/internal/delivery/http/controllers"
	"eventmenu/internal/delivery/http/middleware"
	"eventmenu/internal/domain"
	"eventmenu/internal/editor"
	"eventmenu/internal/livestore"
	"eventmenu/internal/repository/postgres"
	"eventmenu/internal/selection"
	"eventmenu/internal/services"
	"eventmenu/internal/session"

	"golang.org/x/crypto/bcrypt"

	_ "github.com/lib/pq"
)

const (
	shutdownTimeout     = 10 * time.Second
	editorSweepInterval = time.Minute
)

// @title Event Menu API
// @version 1.0
// @description Organizers create branded events with a menu; guests RSVP and pick their food.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		var missing *config.MissingConfigError
		if !errors.As(err, &missing) {
			log.Fatalf("load config: %v", err)
		}
		logger := config.NewLogger(os.Getenv("GO_ENV"))
		logger.Error("configuration incomplete, serving diagnostic only", "missing", missing.Keys)
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		if err := serve(ctx, logger, ":"+port, delivery.NewConfigErrorHandler(missing.Error())); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
		return
	}

	logger := config.NewLogger(cfg.Environment)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}

	// Live store: local hub plus Postgres NOTIFY for writes made by other processes.
	hub := livestore.NewHub(logger, cfg.ContextTimeout)
	defer hub.Close()
	notifier := livestore.NewBroadcaster(hub, db, logger)
	listener, err := livestore.NewListener(cfg.DBUrl, hub, logger)
	if err != nil {
		return err
	}
	defer listener.Close()
	go listener.Run(ctx)

	var publisher domain.MessagePublisher
	if cfg.AMQPUrl != "" {
		p, err := rabbitmq.NewPublisher(cfg.AMQPUrl, logger)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	} else {
		publisher = rabbitmq.NewNoopPublisher(logger)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	}, logger)
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	eventRepo := postgres.NewEventRepository(db)
	guestRepo := postgres.NewGuestRepository(db)
	userRepo := postgres.NewUserRepository(db)
	pointerRepo := postgres.NewAdminPointerRepository(db)

	policy := selection.Policy{
		Mode:          selection.Mode(cfg.SelectionMode),
		Limit:         cfg.SelectionLimit,
		PhoneRequired: cfg.GuestPhoneRequired,
	}
	eventService := services.NewEventService(eventRepo, notifier, publisher, cfg.PublicBaseURL, cfg.ContextTimeout, logger)
	guestService := services.NewGuestService(eventRepo, guestRepo, emailService, publisher, notifier, policy, cfg.ContextTimeout, logger)
	authService := services.NewAuthService(userRepo, auth.NewBcryptHasher(bcrypt.DefaultCost), auth.NewJWTIssuer(cfg.JWTSecret),
		cfg.JWTExpiry, cfg.AnonymousTokenExpiry, cfg.ContextTimeout)

	navigator := session.NewNavigator(pointerRepo, authService, "/", logger)
	editors := editor.NewManager(hub, eventService, cfg.EditorIdleTimeout, logger)
	go editors.Run(ctx, editorSweepInterval)

	router := delivery.NewRouter(delivery.Controllers{
		Auth:    controllers.NewAuthController(logger, authService),
		Events:  controllers.NewEventController(logger, eventService),
		Guests:  controllers.NewGuestController(logger, guestService),
		Session: controllers.NewSessionController(logger, navigator, eventService),
		Editors: controllers.NewEditorController(logger, editors),
		Streams: controllers.NewStreamController(logger, hub, eventService, guestService),
	}, auth.NewJWTVerifier(cfg.JWTSecret), logger)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, router))
	return serve(ctx, logger, ":"+cfg.Port, handler)
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
