// Command server runs the StaffFlow company auth HTTP API and the gRPC health server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/audit"
	auditrepo "github.com/abdul-rozzaq/StaffFlow-backend/internal/audit/repository"
	companyrepo "github.com/abdul-rozzaq/StaffFlow-backend/internal/company/repository"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/companyauth/service"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/config"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/db"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/health"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/identity"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/logging"
	otprepo "github.com/abdul-rozzaq/StaffFlow-backend/internal/otp/repository"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/otp/sweeper"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/ratelimit"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/security"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/server"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/telemetry"
	otelsetup "github.com/abdul-rozzaq/StaffFlow-backend/internal/telemetry/otel"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/telemetry/producer"
	tokenrepo "github.com/abdul-rozzaq/StaffFlow-backend/internal/token/repository"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer conn.Close()

	providers, err := otelsetup.NewProviders(ctx, otelsetup.OptionsFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	providers.SetGlobal()

	companies := companyrepo.NewPostgresRepository(conn)
	otps := otprepo.NewPostgresRepository(conn)
	tokens := tokenrepo.NewPostgresRepository(conn)

	notifier, devStore, err := buildNotifier(cfg)
	if err != nil {
		return fmt.Errorf("notifier: %w", err)
	}
	if devStore != nil {
		logger.Warn("dev OTP mode enabled: codes are readable at GET /dev/company-auth/otp")
	}

	svc := service.NewAuthService(companies, otps, tokens, notifier, cfg.OTPTTLDuration(), cfg.NotifyTimeoutDuration())
	svc.SetLogger(logger)
	svc.SetAuditLogger(audit.NewLogger(auditrepo.NewPostgresRepository(conn), audit.ContextIP, logger))
	metrics, err := service.NewMetrics(otel.Meter("staffflow.companyauth"))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	svc.SetMetrics(metrics)

	var rdb redis.UniversalClient
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer client.Close()
		rdb = client
		svc.SetLimiter(ratelimit.New(client, cfg.OTPRateLimit, cfg.OTPRateWindowDuration()))
	}

	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	defer kafkaProducer.Close()
	events := telemetry.MultiEmitter{otelsetup.NewEventEmitter(providers.LoggerProvider)}
	if kafkaProducer != nil {
		events = append(events, kafkaProducer)
	}
	svc.SetEventEmitter(events)

	resolver := identity.NewResolver(tokens, companies, logger)
	if cfg.StaffJWTPublicKey != "" {
		pub, err := security.ParsePublicKey(cfg.StaffJWTPublicKey)
		if err != nil {
			return fmt.Errorf("staff jwt public key: %w", err)
		}
		resolver.SetStaffVerifier(security.NewStaffVerifier(pub, cfg.StaffJWTIssuer, cfg.StaffJWTAudience))
	}

	checker := health.NewChecker(conn, rdb)
	deps := server.Deps{
		Auth:        svc,
		Resolver:    resolver,
		Health:      checker,
		Events:      events,
		ServiceName: cfg.ServiceName,
		Logger:      logger,
	}
	if devStore != nil {
		deps.DevOTPStore = devStore
	}
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if interval := cfg.SweepIntervalDuration(); interval > 0 {
		go sweeper.New(otps, cfg.OTPTTLDuration(), interval, logger).Run(ctx)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	var stopGRPC func()
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		grpcSrv := server.NewGRPCServer(server.GRPCDeps{
			Resolver:    resolver,
			Health:      checker,
			CompanyAuth: svc,
			Logger:      logger,
		})
		stopGRPC = grpcSrv.GracefulStop
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if stopGRPC != nil {
		stopGRPC()
	}
	// Let in-flight async emits finish before the exporters go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("otel shutdown", "error", err)
	}
	logger.Info("server stopped")
	return runErr
}
