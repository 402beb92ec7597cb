package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carebridge/carebridge/internal/config"
	"github.com/carebridge/carebridge/internal/domain/dietplan"
	"github.com/carebridge/carebridge/internal/domain/followup"
	"github.com/carebridge/carebridge/internal/domain/identity"
	"github.com/carebridge/carebridge/internal/domain/medication"
	"github.com/carebridge/carebridge/internal/domain/notification"
	"github.com/carebridge/carebridge/internal/domain/scheduling"
	"github.com/carebridge/carebridge/internal/domain/supply"
	"github.com/carebridge/carebridge/internal/platform/auth"
	"github.com/carebridge/carebridge/internal/platform/db"
	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/internal/platform/metrics"
	"github.com/carebridge/carebridge/internal/platform/middleware"
	"github.com/carebridge/carebridge/internal/platform/notify"
)

func main() {
	root := &cobra.Command{
		Use:   "carebridge-server",
		Short: "CareBridge healthcare management backend",
	}

	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(ctx)
			if err != nil {
				return err
			}
			log.Info().Int("applied", applied).Msg("migrations up to date")
			return nil
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, cfg.MigrationsDir).Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%03d %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	})

	return migrate
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	// Repositories.
	userRepo := identity.NewPGRepository(pool)
	slotRepo := scheduling.NewPGSlotRepository(pool)
	bookingRepo := scheduling.NewPGBookingRepository(pool)
	prescriptionRepo := medication.NewPGPrescriptionRepository(pool)
	reminderRepo := medication.NewPGReminderRepository(pool)
	followUpRepo := followup.NewPGRepository(pool)
	planRepo := dietplan.NewPGPlanRepository(pool)
	mealRepo := dietplan.NewPGMealRepository(pool)
	supplyRepo := supply.NewPGRepository(pool)
	notificationRepo := notification.NewPGRepository(pool)

	// Events always land in the stored inbox; the AMQP sink joins in when
	// a broker is configured.
	sinks := []notify.Publisher{notification.NewStorePublisher(notificationRepo)}
	if cfg.AMQPURL != "" {
		amqpPub, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.NotifyExchange)
		if err != nil {
			return fmt.Errorf("connect amqp: %w", err)
		}
		sinks = append(sinks, amqpPub)
	} else {
		sinks = append(sinks, notify.NewLogPublisher(log))
	}
	publisher := notify.Multi(sinks...)
	defer publisher.Close()
	dispatcher := notify.NewDispatcher(publisher, log)

	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	// Services.
	userSvc := identity.NewService(userRepo)
	schedulingSvc := scheduling.NewService(slotRepo, bookingRepo, txRunner, dispatcher, log)
	medicationSvc := medication.NewService(prescriptionRepo, reminderRepo, dispatcher)
	followUpSvc := followup.NewService(followUpRepo, dispatcher)
	dietPlanSvc := dietplan.NewService(planRepo, mealRepo, dispatcher)
	supplySvc := supply.NewService(supplyRepo)
	notificationSvc := notification.NewService(notificationRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httperr.Handler(log)

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(metrics.Middleware())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	if cfg.IsDev() {
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.JWTMiddleware(cfg.JWTSecret))
	}

	identity.NewHandler(userSvc).Register(api)
	scheduling.NewHandler(schedulingSvc).Register(api)
	medication.NewHandler(medicationSvc).Register(api)
	followup.NewHandler(followUpSvc).Register(api)
	dietplan.NewHandler(dietPlanSvc).Register(api)
	supply.NewHandler(supplySvc).Register(api)
	notification.NewHandler(notificationSvc).Register(api)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
