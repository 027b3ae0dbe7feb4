package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"mmfc-attendance/internal/attendance"
	attendance_api "mmfc-attendance/internal/attendance/api"
	"mmfc-attendance/internal/auth"
	"mmfc-attendance/internal/config"
	"mmfc-attendance/internal/database/migrations"
	"mmfc-attendance/internal/formation"
	formation_api "mmfc-attendance/internal/formation/api"
	boardlock "mmfc-attendance/internal/formation/redis"
	"mmfc-attendance/internal/gate"
	gate_api "mmfc-attendance/internal/gate/api"
	"mmfc-attendance/internal/kafka"
	"mmfc-attendance/internal/logger"
	"mmfc-attendance/internal/qr"
	"mmfc-attendance/internal/store"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Fatal("CONFIG", "POSTGRES_DSN not set")
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	logger.Info("DATABASE", "PostgreSQL connection successful")
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting attendance service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx, cancelPolling := context.WithCancel(context.Background())
	defer cancelPolling()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	if os.Getenv("AUTO_MIGRATE") != "false" {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
		if err := runner.MigrateUp(); err != nil {
			logger.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
		}
		logger.Info("DATABASE", "Schema migrations applied")
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()

		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, kafka.Topics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		logger.Warn("KAFKA", "Kafka disabled, events will not be published")
	}

	db := &store.DB{Bun: bunDB}

	// A disabled producer must stay a nil interface, not a typed nil.
	var (
		gateEvents  gate.EventPublisher
		attEvents   attendance.EventPublisher
		boardEvents formation.EventPublisher
	)
	if producer != nil {
		gateEvents, attEvents, boardEvents = producer, producer, producer
	}

	gateController := gate.NewController(db, gateEvents, logger)
	gateController.Interval = cfg.Gate.PollInterval
	gateController.Start(ctx)
	logger.Info("GATE", fmt.Sprintf("Gate polling started (every %s)", cfg.Gate.PollInterval))

	attendanceService := attendance.NewService(db, gateController, attEvents)
	engine := formation.NewEngine(db, boardEvents, logger)
	saveLock := boardlock.NewLock(redisClient)
	admin := auth.NewAdmin(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.TokenSecret)
	qrGen := qr.NewGenerator(cfg.Server.PublicURL)

	attendanceHandler := attendance_api.NewHandler(attendanceService, engine, qrGen, logger)
	gateHandler := gate_api.NewHandler(gateController, admin, logger)
	formationHandler := formation_api.NewHandler(engine, attendanceService, saveLock, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Route("/api", func(r chi.Router) {
		r.Post("/checkin", attendanceHandler.CheckIn)
		r.Get("/checkin", attendanceHandler.List)
		r.Get("/checkin/qr", attendanceHandler.Poster)
		r.Get("/gate", gateHandler.GetGate)
		r.Post("/admin/login", gateHandler.Login)

		r.Route("/formation", func(r chi.Router) {
			r.Get("/", formationHandler.GetBoard)
			r.Get("/counts", formationHandler.Counts)
			r.Post("/place", formationHandler.Place)
			r.Post("/clear", formationHandler.ClearSlot)
			r.Post("/reset", formationHandler.Reset)
			r.Put("/type", formationHandler.ChangeType)
		})

		// --- Admin Routes ---
		r.Group(func(r chi.Router) {
			r.Use(admin.Middleware())
			r.Put("/admin/gate", gateHandler.Toggle)
			r.Delete("/checkin", attendanceHandler.Delete)
			r.Get("/admin/king", attendanceHandler.King)
		})
	})
	logger.Info("ROUTER", "Routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("Attendance service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	cancelPolling()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		logger.Info("HTTP", "Attendance service shutdown complete")
	}
}
