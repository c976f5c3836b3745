// Command api serves the Birthday Club HTTP API.
//
// @title Birthday Club API
// @version 1.0
// @description Monthly interest-based birthday events: hosting, invite-code joins and ticket payments.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	_ "github.com/lib/pq"

	"birthdayclub/config"
	_ "birthdayclub/docs"
	"birthdayclub/internal/adapters/auth"
	"birthdayclub/internal/adapters/email"
	"birthdayclub/internal/adapters/payment"
	deliveryhttp "birthdayclub/internal/delivery/http"
	"birthdayclub/internal/delivery/http/controllers"
	"birthdayclub/internal/delivery/http/middleware"
	"birthdayclub/internal/domain"
	"birthdayclub/internal/repository/postgres"
	"birthdayclub/internal/repository/sqlite"
	"birthdayclub/internal/services"
)

const shutdownTimeout = 15 * time.Second

type repositories struct {
	events    domain.EventRepository
	guests    domain.GuestRepository
	interests domain.InterestRepository
	users     domain.UserRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, repos, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("storage ready", "driver", cfg.DBDriver)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	gateway, err := payment.NewGateway(payment.Config{
		Provider:           cfg.Payment.Provider,
		MidtransServerKey:  cfg.Payment.MidtransServerKey,
		MidtransProduction: cfg.Payment.MidtransProduction,
		MockSecret:         cfg.Payment.MockSecret,
		PublicBaseURL:      cfg.PublicBaseURL,
	}, logger)
	if err != nil {
		return fmt.Errorf("payment gateway: %w", err)
	}
	logger.Info("payment gateway ready", "provider", gateway.Name())

	timeout := cfg.RequestTimeout
	loc := cfg.EventLocation
	eventService := services.NewEventService(repos.events, repos.interests, repos.users, emailService, logger, loc, cfg.PublicBaseURL, timeout)
	guestService := services.NewGuestService(repos.events, repos.guests, repos.users, emailService, logger, loc, timeout)
	paymentService := services.NewPaymentService(repos.events, repos.guests, repos.users, gateway, emailService, logger, cfg.Payment.Currency, loc, timeout)
	interestService := services.NewInterestService(repos.interests, timeout)

	router := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Events:    controllers.NewEventController(logger, eventService),
		Guests:    controllers.NewGuestController(logger, guestService),
		Payments:  controllers.NewPaymentController(logger, paymentService),
		Interests: controllers.NewInterestController(logger, interestService),
	}, auth.NewJWTVerifier(cfg.JWTSecret), logger)

	var handler http.Handler = router
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.Recover(logger, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment, "time_zone", loc.String())
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
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config) (*sql.DB, repositories, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, repositories{}, err
		}
		return db, repositories{
			events:    sqlite.NewEventRepository(db),
			guests:    sqlite.NewGuestRepository(db),
			interests: sqlite.NewInterestRepository(db),
			users:     sqlite.NewUserRepository(db),
		}, nil
	default:
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			return nil, repositories{}, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, repositories{}, fmt.Errorf("ping postgres: %w", err)
		}
		return db, repositories{
			events:    postgres.NewEventRepository(db),
			guests:    postgres.NewGuestRepository(db),
			interests: postgres.NewInterestRepository(db),
			users:     postgres.NewUserRepository(db),
		}, nil
	}
}
