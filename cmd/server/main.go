package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"barberq.backend/internal/config"
	"barberq.backend/internal/infrastructure/jobs"
	"barberq.backend/internal/infrastructure/models"
	"barberq.backend/internal/infrastructure/notify"
	"barberq.backend/internal/infrastructure/realtime"
	"barberq.backend/pkg/logger"
	"barberq.backend/pkg/metrics"
	"barberq.backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			TranslateError: true,
		})
	}
	runServer = func(ctx context.Context, srv *http.Server) error {
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
	getStdDB = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	initLog(cfg.Server.Env)
	defer logger.Sync()
	bootCtx := context.Background()
	logger.Info(bootCtx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := models.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info(bootCtx, "Database schema migrated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("barberq", registry)

	hub := realtime.NewHub(realtime.DefaultBufferSize)
	hub.OnDrop(func(string) { m.BroadcastDropped() })

	out := outbound{hub: hub, metrics: m}
	var lock jobs.LockFunc

	// Redis carries broadcasts between instances; without it sockets only
	// see events raised by this process.
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Warn(bootCtx, "Redis unavailable, broadcasting in-process only", zap.Error(err))
		out.broadcaster = realtime.NewLocalBroker(hub)
	} else {
		broker := realtime.NewRedisBroker(hub)
		out.broadcaster = broker
		lock = redis.TryLock
		go func() {
			if err := broker.Run(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error(bootCtx, "Broadcast relay stopped", zap.Error(err))
			}
		}()
		logger.Info(bootCtx, "Redis initialized")
	}

	if cfg.SMTP.Enabled() {
		mailer, err := notify.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			return err
		}
		out.mailer = mailer
	}
	if cfg.Twilio.Enabled() {
		out.sms = notify.NewTwilioSMS(cfg.Twilio)
	}

	a := wireApp(db, cfg, out)
	defer a.notifier.Wait()

	resetJob, err := jobs.NewTurnResetJob(a.merchant, cfg.Booking.TurnResetSchedule, cfg.Booking.Location(), lock)
	if err != nil {
		return err
	}
	go resetJob.Start(ctx)
	defer resetJob.Stop()

	r := newRouter(a.routes, cfg.Server.AllowedOrigins, m, registry)

	logger.Info(bootCtx, "BarberQ backend starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("routes", len(r.Routes())),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := runServer(ctx, srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(bootCtx, "Server stopped")
	return nil
}
