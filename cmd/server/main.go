package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shareit/service-shareit/internal/application"
	"github.com/shareit/service-shareit/internal/cache"
	"github.com/shareit/service-shareit/internal/config"
	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	commentDomain "github.com/shareit/service-shareit/internal/domain/comment"
	"github.com/shareit/service-shareit/internal/domain/directory"
	requestDomain "github.com/shareit/service-shareit/internal/domain/request"
	shareitEvents "github.com/shareit/service-shareit/internal/events"
	"github.com/shareit/service-shareit/internal/handler"
	"github.com/shareit/service-shareit/internal/platform/auth"
	"github.com/shareit/service-shareit/internal/platform/clock"
	"github.com/shareit/service-shareit/internal/platform/database"
	"github.com/shareit/service-shareit/internal/platform/health"
	"github.com/shareit/service-shareit/internal/platform/kafka"
	"github.com/shareit/service-shareit/internal/platform/logger"
	"github.com/shareit/service-shareit/internal/platform/metrics"
	"github.com/shareit/service-shareit/internal/platform/middleware"
	"github.com/shareit/service-shareit/internal/repository"
	"github.com/shareit/service-shareit/internal/repository/memory"
)

const serviceName = "service-shareit"

type stores struct {
	bookings  bookingDomain.BookingRepository
	directory directory.Directory
	comments  commentDomain.CommentRepository
	requests  requestDomain.Repository
	checkers  []health.Checker
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("store", cfg.Store),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(cfg, log)
	if err != nil {
		log.Fatal("failed to open stores", zap.Error(err))
	}

	// Optional Redis cache in front of the directory
	dir := st.directory
	if cfg.RedisConfig.Enabled() {
		redisClient := cache.NewRedisClient(cfg.RedisConfig)
		if err := cache.Ping(ctx, redisClient); err != nil {
			log.Warn("redis unavailable, directory cache disabled", zap.Error(err))
			_ = redisClient.Close()
		} else {
			defer func() { _ = redisClient.Close() }()
			dir = cache.NewDirectoryCache(st.directory, redisClient, cfg.RedisConfig.TTL, log)
			st.checkers = append(st.checkers, health.CheckFunc{
				DependencyName: "redis",
				Fn:             func(ctx context.Context) error { return cache.Ping(ctx, redisClient) },
			})
			log.Info("directory cache enabled", zap.String("addr", cfg.RedisConfig.Addr))
		}
	}

	// Initialize Kafka producer
	var publisher kafka.Publisher = kafka.NoopPublisher{}
	if cfg.KafkaConfig.Enabled() {
		producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		publisher = producer
	} else {
		log.Info("no kafka brokers configured, booking events are not published")
	}

	// Initialize application services
	clk := clock.System{}
	metrics.Register()

	bookingService := application.NewBookingService(st.bookings, dir, publisher, clk, log)
	itemService := application.NewItemService(dir, st.bookings, st.comments, st.requests, clk, log)
	commentService := application.NewCommentService(st.comments, dir, bookingService, clk, log)
	userService := application.NewUserService(dir, log)
	requestService := application.NewItemRequestService(st.requests, dir, clk, log)

	// Start the user replica consumer
	if cfg.KafkaConfig.Enabled() {
		userConsumer := shareitEvents.NewUserEventConsumer(
			cfg.KafkaConfig.Brokers,
			cfg.KafkaConfig.GroupPrefix+"shareit-users",
			dir,
			log,
		)
		defer func() { _ = userConsumer.Close() }()

		go func() {
			log.Info("starting user event consumer")
			if err := userConsumer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("user event consumer error", zap.Error(err))
			}
		}()
	}

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTTL)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(serviceName, st.checkers...).RegisterRoutes(router)
	router.GET("/metrics", metrics.Handler())

	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewItemHandler(itemService, commentService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewUserHandler(userService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewItemRequestHandler(requestService).RegisterRoutes(&router.RouterGroup, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

func openStores(cfg *config.ServiceConfig, log *zap.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store, data is lost on restart")
		dir := memory.NewDirectory()
		return &stores{
			bookings:  memory.NewBookingStore(dir),
			directory: dir,
			comments:  memory.NewCommentStore(),
			requests:  memory.NewRequestStore(),
		}, nil
	}

	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.UserModel{},
			&repository.ItemRequestModel{},
			&repository.ItemModel{},
			&repository.BookingModel{},
			&repository.CommentModel{},
		); err != nil {
			return nil, fmt.Errorf("failed to run auto-migration: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else if err := database.RunMigrations(dbConfig.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &stores{
		bookings:  repository.NewGormBookingRepository(db),
		directory: repository.NewGormDirectory(db),
		comments:  repository.NewGormCommentRepository(db),
		requests:  repository.NewGormRequestRepository(db),
		checkers:  []health.Checker{postgresCheck(db)},
	}, nil
}

func postgresCheck(db *gorm.DB) health.Checker {
	return health.CheckFunc{
		DependencyName: "postgres",
		Fn: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}
