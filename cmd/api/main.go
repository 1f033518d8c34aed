package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/parsakhaledi/paydar/internal/adapters/cache"
	adapterHTTP "github.com/parsakhaledi/paydar/internal/adapters/handler/http"
	"github.com/parsakhaledi/paydar/internal/adapters/repository"
	"github.com/parsakhaledi/paydar/internal/core/services"
	"github.com/parsakhaledi/paydar/internal/core/workers"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")

	serverPort := envOr("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is not set")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	redisDB, _ := strconv.Atoi(envOr("REDIS_DB", "0"))
	redisAddr := envOr("REDIS_HOST", "localhost") + ":" + envOr("REDIS_PORT", "6379")
	rdb, err := cache.NewRedisClient(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err != nil {
		log.Printf("Redis unavailable, running without report cache: %v", err)
		rdb = nil
	}

	userRepo := repository.NewPostgresUserRepository(db)
	habitRepo := repository.NewPostgresHabitRepository(db)
	logRepo := repository.NewPostgresLogRepository(db)

	statsService := services.NewStatsService(habitRepo, logRepo)

	var statsProvider services.StatsProvider = statsService
	var statsWorker *workers.StatsWorker
	if rdb != nil {
		cached := cache.NewCachedStatsProvider(statsService, rdb)
		statsProvider = cached
		statsWorker = workers.NewStatsWorker(cached, cached)
	} else {
		statsWorker = workers.NewStatsWorker(statsService, nil)
	}

	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(jwtSecret, 24*time.Hour, userRepo)
	habitService := services.NewHabitService(habitRepo, logRepo, statsWorker)
	logService := services.NewLogService(habitRepo, logRepo, statsWorker)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	statsWorker.Start(workerCtx)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:  adapterHTTP.NewAuthHandler(authService, tokenService),
		HabitHandler: adapterHTTP.NewHabitHandler(habitService),
		LogHandler:   adapterHTTP.NewLogHandler(logService),
		StatsHandler: adapterHTTP.NewStatsHandler(statsProvider, statsService),
		TokenService: tokenService,
		DB:           db,
		Redis:        rdb,
		StartTime:    startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Paydar API running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
