package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/quicktradepro/quicktrade/internal/backup"
	"github.com/quicktradepro/quicktrade/internal/cache"
	"github.com/quicktradepro/quicktrade/internal/database"
	"github.com/quicktradepro/quicktrade/internal/logging"
	"github.com/quicktradepro/quicktrade/internal/payment"
	"github.com/quicktradepro/quicktrade/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("QTP_LOG_LEVEL"), os.Getenv("QTP_LOG_FORMAT"))

	port := envOr("QTP_PORT", "8080")
	dbPath := envOr("QTP_DB_PATH", "quicktrade.db")
	cachePath := envOr("QTP_CACHE_PATH", "quicktrade-cache.json")
	baseURL := envOr("QTP_BASE_URL", "http://localhost:"+port)

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	localCache, err := cache.Open(cachePath)
	if err != nil {
		slog.Error("failed to open local cache", "error", err)
		os.Exit(1)
	}

	cfg := server.Config{
		BaseURL:       baseURL,
		YocoSecretKey: os.Getenv("YOCO_SECRET_KEY"),
		PayFast: payment.PayFastConfig{
			Receiver:  os.Getenv("PAYFAST_RECEIVER"),
			ItemName:  envOr("PAYFAST_ITEM_NAME", "QUICKTRADE PRO"),
			ReturnURL: baseURL + "/payment-success",
			CancelURL: baseURL + "/payment-cancel",
		},
		AppTokenSecret: os.Getenv("QTP_APP_TOKEN_SECRET"),
		MaxLicenses:    envInt("QTP_MAX_LICENSES", 0),
	}

	srv := server.New(db, localCache, cfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Session and rate-limiter cleanup
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-rootCtx.Done():
				return
			}
		}
	}()

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("QTP_BACKUP_S3_ENDPOINT"),
			Bucket:    os.Getenv("QTP_BACKUP_S3_BUCKET"),
			Region:    envOr("QTP_BACKUP_S3_REGION", "auto"),
			AccessKey: os.Getenv("QTP_BACKUP_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("QTP_BACKUP_S3_SECRET_KEY"),
		},
	}, db, logger.With("component", "backup"))
	backupMgr.Start(rootCtx)

	go func() {
		slog.Info("quicktrade service starting", "addr", ":"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	rootCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
