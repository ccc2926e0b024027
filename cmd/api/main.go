package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/ezpay/settlement-service/internal/codec"
	"github.com/ezpay/settlement-service/internal/config"
	"github.com/ezpay/settlement-service/internal/handler"
	"github.com/ezpay/settlement-service/internal/integrations/watchlist"
	"github.com/ezpay/settlement-service/internal/middleware"
	"github.com/ezpay/settlement-service/internal/repository"
	"github.com/ezpay/settlement-service/internal/risk"
	"github.com/ezpay/settlement-service/internal/service"
	"github.com/ezpay/settlement-service/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	cdc, err := codec.New(cfg.CodecKey)
	if err != nil {
		logger.Fatalf("Failed to initialize codec: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db, cdc)
	scorer := risk.NewScorer(logger)
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(repo, cdc, scorer, mailer, cfg, logger)
	h := handler.NewHandler(svc)

	// Scheduled jobs: watchlist sync and nightly fraud digest
	scheduler := cron.New()
	if cfg.WatchlistURL != "" {
		feed := watchlist.NewClient(cfg, logger)
		if _, err := scheduler.AddFunc("@hourly", func() {
			if err := svc.SyncWatchlist(context.Background(), feed); err != nil {
				logger.Errorf("Watchlist sync failed: %v", err)
			}
		}); err != nil {
			logger.Fatalf("Failed to schedule watchlist sync: %v", err)
		}
	}
	if _, err := scheduler.AddFunc("0 6 * * *", func() {
		yesterday := time.Now().AddDate(0, 0, -1)
		if err := svc.SendDailyFraudDigest(context.Background(), yesterday); err != nil {
			logger.Errorf("Fraud digest failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule fraud digest: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestID(logger))
	// Public routes
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	r.HandleFunc("/similarity", h.Similarity).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/accounts/{id:[0-9]+}", h.GetAccount).Methods("GET")
	authRouter.HandleFunc("/accounts/{id:[0-9]+}", h.UpdateAccount).Methods("PATCH")
	authRouter.HandleFunc("/accounts/{id:[0-9]+}", h.DeleteAccount).Methods("DELETE")
	authRouter.HandleFunc("/transactions", h.FlagTransaction).Methods("POST")
	authRouter.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	authRouter.HandleFunc("/transactions/{id:[0-9]+}", h.GetTransaction).Methods("GET")
	authRouter.HandleFunc("/frauds", h.ListFraudTransactions).Methods("GET")
	authRouter.HandleFunc("/frauds/{id:[0-9]+}", h.GetFraudTransaction).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
