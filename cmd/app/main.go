package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ops-dashboard/internal/auth"
	"ops-dashboard/internal/config"
	"ops-dashboard/internal/logger"
	"ops-dashboard/internal/models"
	"ops-dashboard/internal/report"
	"ops-dashboard/internal/repository"
	"ops-dashboard/internal/service"
	transportHttp "ops-dashboard/internal/transport/http"
)

var rootCmd = &cobra.Command{
	Use:           "opsdash",
	Short:         "Operations dashboard API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  serve,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("opsdash: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// setup loads the config and builds the process logger from it.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	pgPool, err := initPostgres(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	// Redis
	redisClient, err := initRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// ClickHouse
	clickhouseConn, err := initClickhouse(cfg)
	if err != nil {
		return err
	}
	defer clickhouseConn.Close()

	// Repos
	postgresRepo := repository.NewPostgresRepository(pgPool, log)
	redisRepo := repository.NewRedisRepository(redisClient, cfg.CacheTTL)
	clickhouseRepo := repository.NewClickhouseRepository(clickhouseConn)
	if err := clickhouseRepo.EnsureSchema(ctx); err != nil {
		return err
	}

	// NATS
	var publisher service.Publisher
	if cfg.EventsEnabled {
		natsConn, err := initNATS(cfg)
		if err != nil {
			return err
		}
		defer natsConn.Close()

		subscriber := service.NewNATSSubscriber(natsConn, clickhouseRepo, cfg.NatsSubject, log)
		if err := subscriber.Subscribe(); err != nil {
			return err
		}
		defer subscriber.Drain()
		publisher = natsConn
	} else {
		log.Warn("change events disabled, project history stays empty")
	}

	// Services
	expiry, err := models.ParseDate(cfg.JiraAPIExpiry)
	if err != nil {
		return err
	}
	archiver, err := report.NewArchiver(report.ArchiveConfig{
		Endpoint:  cfg.S3Endpoint,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		return err
	}

	dashboard := service.NewDashboardService(postgresRepo, redisRepo, publisher, clickhouseRepo, cfg.NatsSubject, log)
	analyticsSvc := service.NewAnalyticsService(postgresRepo, redisRepo, log)
	services := transportHttp.Services{
		Dashboard: dashboard,
		Analytics: analyticsSvc,
		Jira: service.NewJiraService(service.IntegrationConfig{
			JiraBaseURL:           cfg.JiraBaseURL,
			JiraEmail:             cfg.JiraEmail,
			JiraAPIToken:          cfg.JiraAPIToken,
			JiraAPIExpiry:         expiry,
			JiraWarningDays:       cfg.JiraWarningDays,
			IgnitionBaseURL:       cfg.IgnitionBaseURL,
			IgnitionUsername:      cfg.IgnitionUsername,
			IgnitionPassword:      cfg.IgnitionPassword,
			IgnitionSkipTLSVerify: cfg.IgnitionSkipTLSVerify,
			PowerAutomateURL:      cfg.PowerAutomateURL,
		}, log),
		Reports: service.NewReportService(analyticsSvc, archiver, log),
		Auth: service.NewAuthService(
			auth.Credentials{Username: cfg.AuthUsername, PasswordHash: cfg.AuthPasswordHash},
			auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
			log),
	}

	// Handler, Routes
	handler := transportHttp.NewHandler(services, log)
	router := transportHttp.NewRouter(handler, log, cfg.AuthEnabled)

	// HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.HttpPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.HttpPort), zap.Bool("auth", cfg.AuthEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("server exiting")
	return nil
}

func initPostgres(ctx context.Context, cfg *config.Config, log *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = int32(cfg.DbMaxConns)

	log.Info("connecting to PostgreSQL",
		zap.String("host", cfg.DbHost),
		zap.String("db", cfg.DbName),
		zap.String("user", cfg.DbUser))

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func initClickhouse(cfg *config.Config) (clickhouse.Conn, error) {
	return clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.ClickhouseAddr()},
		Auth: clickhouse.Auth{
			Database: cfg.ChDatabase,
		},
	})
}

func initNATS(cfg *config.Config) (*nats.Conn, error) {
	return nats.Connect(cfg.NatsURL, nats.Name("opsdash"))
}
