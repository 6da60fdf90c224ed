// Package main runs the confirmation email worker on its own, for
// deployments that keep delivery out of the API process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cornerstone-fellowship/backend/config"
	"github.com/cornerstone-fellowship/backend/internal/checkin"
	"github.com/cornerstone-fellowship/backend/internal/mailer"
	"github.com/cornerstone-fellowship/backend/internal/notify"
	"github.com/cornerstone-fellowship/backend/internal/store"
	"github.com/cornerstone-fellowship/backend/pkg/database"
	"github.com/cornerstone-fellowship/backend/pkg/qrstore"
	"github.com/cornerstone-fellowship/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Redis.Addr == "" {
		logger.Fatal("REDIS_ADDR is required for the worker")
	}

	ctx := context.Background()

	var rows store.RowStore
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		rows = store.NewPostgresStore(pool)
	case config.StoreBackendMemory:
		logger.Fatal("the memory store cannot back a standalone worker")
	default:
		sheetsStore, err := store.NewSheetsStore(ctx, cfg.Sheets)
		if err != nil {
			logger.Fatal("sheets store", zap.Error(err))
		}
		rows = sheetsStore
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var sender mailer.Sender
	switch cfg.Email.Transport {
	case "ses":
		sesSender, err := mailer.NewSESSender(ctx, cfg.AWS, cfg.Email.FromAddress)
		if err != nil {
			logger.Fatal("ses sender", zap.Error(err))
		}
		sender = sesSender
	default:
		sender = mailer.NewSMTPSender(cfg.Email)
	}

	var qrHost mailer.QRHost
	if cfg.AWS.QRBucket != "" {
		s3qr, err := qrstore.NewS3Store(ctx, qrstore.Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			Bucket:               cfg.AWS.QRBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Fatal("qr store", zap.Error(err))
		}
		qrHost = s3qr
	}
	mailSvc := mailer.NewService(sender, qrHost, logger)

	codec := checkin.NewCodec(cfg.Checkin.TokenSecret)
	deliverer := notify.NewDeliverer(rows, codec, mailSvc, logger)
	queue := notify.NewQueue(rdb.Client, logger)
	worker := notify.NewWorker(queue, deliverer, rows, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
