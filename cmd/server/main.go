// Package main runs the registration HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/cornerstone-fellowship/backend/config"
	"github.com/cornerstone-fellowship/backend/internal/checkin"
	"github.com/cornerstone-fellowship/backend/internal/mailer"
	"github.com/cornerstone-fellowship/backend/internal/metrics"
	"github.com/cornerstone-fellowship/backend/internal/middleware"
	"github.com/cornerstone-fellowship/backend/internal/notify"
	"github.com/cornerstone-fellowship/backend/internal/otp"
	"github.com/cornerstone-fellowship/backend/internal/registrations"
	"github.com/cornerstone-fellowship/backend/internal/staff"
	"github.com/cornerstone-fellowship/backend/internal/store"
	"github.com/cornerstone-fellowship/backend/pkg/database"
	"github.com/cornerstone-fellowship/backend/pkg/qrstore"
	"github.com/cornerstone-fellowship/backend/pkg/redis"
	"github.com/cornerstone-fellowship/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Row store backend
	var rows store.RowStore
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		rows = store.NewPostgresStore(pool)
	case config.StoreBackendMemory:
		logger.Warn("using in-memory row store, data is not persisted")
		rows = store.NewMemoryStore()
	default:
		sheetsStore, err := store.NewSheetsStore(ctx, cfg.Sheets)
		if err != nil {
			logger.Fatal("sheets store", zap.Error(err))
		}
		rows = sheetsStore
	}

	// Redis is optional: without it the OTP ledger lives in process memory
	// and confirmations are delivered on a goroutine instead of the queue.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	// Mail transport
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

	m := metrics.New()
	locks := store.NewKeyedMutex()

	// OTP
	var otpStore otp.Store
	if rdb != nil {
		otpStore = otp.NewRedisStore(rdb.Client)
	} else {
		otpStore = otp.NewMemoryStore()
	}
	otpTTL := time.Duration(cfg.OTP.TTLMinutes) * time.Minute
	otpSvc := otp.NewService(otpStore, mailSvc, otpTTL, logger, m)
	otpHandler := otp.NewHandler(otpSvc, rows, logger)

	// Confirmation delivery
	codec := checkin.NewCodec(cfg.Checkin.TokenSecret)
	deliverer := notify.NewDeliverer(rows, codec, mailSvc, logger)
	var dispatcher notify.Dispatcher
	var confirmWorker *notify.Worker
	if rdb != nil {
		queue := notify.NewQueue(rdb.Client, logger)
		dispatcher = notify.NewQueueDispatcher(queue, rows, logger)
		confirmWorker = notify.NewWorker(queue, deliverer, rows, logger)
	} else {
		dispatcher = notify.NewDirectDispatcher(deliverer, rows, logger)
	}

	// Registrations
	regSvc := registrations.NewService(rows, locks, logger, m)
	regHandler := registrations.NewHandler(regSvc, dispatcher, logger)

	// Staff and check-in
	credential := staff.NewCredential(cfg.Staff)
	tokens := staff.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	staffHandler := staff.NewHandler(credential, tokens, logger)
	coordinator := checkin.NewCoordinator(rows, codec, locks, credential, logger, m)
	checkinHandler := checkin.NewHandler(coordinator, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/sendOTP", otpHandler.SendOTP)
	router.POST("/verifyOTP", otpHandler.VerifyOTP)
	router.POST("/saveOrUpdate", regHandler.SaveOrUpdate)
	router.POST("/checkinQRcode", checkinHandler.Redeem)
	router.POST("/loginStaff", staffHandler.Login)

	// Staff session routes
	api := router.Group("")
	api.Use(middleware.StaffAuth(tokens))
	{
		api.GET("/checkinStatus/:email", checkinHandler.Status)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	if confirmWorker != nil {
		g.Go(func() error {
			confirmWorker.Run(gctx)
			return nil
		})
		logger.Info("confirmation worker started")
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
