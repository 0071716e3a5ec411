package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/yusufkecer/hospital-backend/internal/db"
	"github.com/yusufkecer/hospital-backend/internal/handler"
	"github.com/yusufkecer/hospital-backend/internal/realtime"
	"github.com/yusufkecer/hospital-backend/internal/repository"
	"github.com/yusufkecer/hospital-backend/internal/service"
)

func serveCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			if cfg.SentryDSN != "" {
				if err := sentry.Init(sentry.ClientOptions{
					Dsn:         cfg.SentryDSN,
					Environment: cfg.Env,
				}); err != nil {
					logger.Warn().Err(err).Msg("sentry init failed")
				} else {
					defer sentry.Flush(2 * time.Second)
				}
			}

			database, err := db.Connect(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			if !skipMigrations {
				if err := db.RunMigrations(ctx, database, logger); err != nil {
					return err
				}
			}

			docs, err := db.ConnectMongo(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer docs.Client().Disconnect(context.Background())

			if err := db.EnsureMongoIndexes(ctx, docs); err != nil {
				return err
			}

			accountRepo := repository.NewAccountRepository(database)
			resetTokenRepo := repository.NewResetTokenRepository(database)
			patientRepo := repository.NewPatientRepository(database)
			appointmentRepo := repository.NewAppointmentRepository(database)
			fitnessRepo := repository.NewFitnessRepository(database)
			messageRepo := repository.NewMessageRepository(database)
			queueRepo := repository.NewQueueRepository(database)
			activityRepo := repository.NewActivityLogRepository(docs)
			insightRepo := repository.NewAIInsightRepository(docs)

			emailService := service.NewEmailService(cfg.ResendAPIKey, cfg.MailFrom, logger)
			if !emailService.Enabled() {
				logger.Warn().Msg("RESEND_API_KEY not set, outbound mail disabled")
			}
			dashboards := service.NewDashboardService(
				accountRepo,
				patientRepo,
				appointmentRepo,
				queueRepo,
				messageRepo,
				cfg.AvgConsultMinutes,
			)
			hub := realtime.NewHub()
			activity := handler.NewActivity(activityRepo)

			h := handlers{
				Auth:        handler.NewAuthHandler(cfg.JWTSecret, accountRepo, patientRepo, resetTokenRepo, emailService, activity),
				Users:       handler.NewUserHandler(accountRepo, dashboards, activity),
				Patients:    handler.NewPatientHandler(patientRepo, insightRepo, activity),
				Appointment: handler.NewAppointmentHandler(appointmentRepo, patientRepo, accountRepo, emailService, activity),
				Fitness:     handler.NewFitnessHandler(fitnessRepo, patientRepo, activity),
				Messages:    handler.NewMessageHandler(messageRepo, accountRepo, hub, activity),
				Queue:       handler.NewQueueHandler(queueRepo, patientRepo, cfg.AvgConsultMinutes, activity),
				Activity:    handler.NewActivityLogHandler(activityRepo),
				Insights:    handler.NewAIInsightHandler(insightRepo, patientRepo, activity),
				Hub:         hub,
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           newRouter(cfg, logger, h),
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
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

			logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
	return cmd
}
