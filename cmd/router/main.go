// cmd/router/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"guest-router/internal/audit"
	"guest-router/internal/classifier"
	"guest-router/internal/common/aws"
	"guest-router/internal/common/config"
	"guest-router/internal/common/database"
	apperrors "guest-router/internal/common/errors"
	"guest-router/internal/common/logger"
	"guest-router/internal/common/observability"
	"guest-router/internal/conversation"
	"guest-router/internal/faq"
	"guest-router/internal/notify"
	"guest-router/internal/server"
	"guest-router/internal/session"
	"guest-router/internal/ticket"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting guest router...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("guest-router")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return apperrors.NewDatabaseConnectionFailedError(err)
		}
		if err := pg.Ping(ctx); err != nil {
			return apperrors.NewDatabaseConnectionFailedError(err)
		}
		return nil
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional, audit trail only) ---
	var auditor conversation.Auditor
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}

		indexer := audit.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.AuditIndex, log)
		if err := indexer.Ensure(ctx); err != nil {
			zapLog.Fatal("audit index setup failed", zap.Error(err))
		}
		auditor = indexer
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init staff notifier (optional) ---
	var notifier conversation.Notifier
	if cfg.Notifications.SNS.Enabled || cfg.Notifications.Email.Enabled {
		var snsService notify.SNSService
		var sesService notify.SESService

		if cfg.Notifications.SNS.Enabled {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("SNS client init failed", zap.Error(err))
			}
			snsService = snsClient
		}
		if cfg.Notifications.Email.Enabled {
			sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("SES client init failed", zap.Error(err))
			}
			sesService = sesClient
		}

		notifier = notify.NewStaffNotifier(&cfg.Notifications, snsService, sesService, log)
		zapLog.Info("Staff notifier initialized")
	}

	// --- Wire the engine ---
	sessions := session.NewStore(
		rdb.Client, log,
		config.GetSeconds(cfg.Routing.SessionTTL),
		config.GetSeconds(cfg.Routing.DedupTTL),
	)
	tickets := ticket.NewStore(pg.GetDB(), log)
	fallback := classifier.NewHTTPClassifier(&cfg.Classifier, log)

	engine := conversation.NewEngine(
		sessions, fallback, tickets, faq.NewStaticResponder(), notifier, auditor, log,
		conversation.Options{
			ConfidenceThreshold: cfg.Routing.ConfidenceThreshold,
			ClarifyMaxRetries:   cfg.Routing.ClarifyMaxRetries,
		},
	)

	srv := server.New(engine, obs, log)
	httpServer := &http.Server{
		Addr:    cfg.App.ListenAddr,
		Handler: srv.Handler(),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.App.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Guest router stopped gracefully")
}
