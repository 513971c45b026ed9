package main

import (
	"context"
	"log"

	"github.com/fixhub/fixhub-backend/config"
	"github.com/fixhub/fixhub-backend/controllers"
	"github.com/fixhub/fixhub-backend/database"
	"github.com/fixhub/fixhub-backend/kafka"
	"github.com/fixhub/fixhub-backend/logger"
	"github.com/fixhub/fixhub-backend/middleware"
	"github.com/fixhub/fixhub-backend/models"
	"github.com/fixhub/fixhub-backend/payments"
	"github.com/fixhub/fixhub-backend/repository"
	"github.com/fixhub/fixhub-backend/routes"
	"github.com/fixhub/fixhub-backend/services"
	"github.com/fixhub/fixhub-backend/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Environment)
	defer logger.Sync()

	if err := database.Connect(cfg); err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := models.Migrate(database.DB); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient := database.NewRedisClient(cfg.RedisURL)

	producer := kafka.NewPaymentEventProducer(cfg.KafkaBrokers, cfg.PaymentTopic)
	defer producer.Close()

	userRepo := repository.NewGormUserRepo(database.DB)
	workOrderRepo := repository.NewGormWorkOrderRepo(database.DB)
	paymentRepo := repository.NewGormPaymentRepo(database.DB)
	productRepo := repository.NewGormProductRepo(database.DB)
	ticketRepo := repository.NewGormTicketRepo(database.DB)

	registry := payments.NewRegistry()
	if cfg.Paystack.SecretKey != "" {
		registry.Register(payments.NewPaystackProvider(
			cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, cfg.Paystack.WebhookSecret, cfg.AllowUnsignedWebhooks))
	}
	if cfg.Flutterwave.SecretKey != "" {
		registry.Register(payments.NewFlutterwaveProvider(
			cfg.Flutterwave.BaseURL, cfg.Flutterwave.SecretKey, cfg.Flutterwave.WebhookSecret, cfg.AllowUnsignedWebhooks))
	}
	if cfg.Etegram.SecretKey != "" {
		registry.Register(payments.NewEtegramProvider(
			cfg.Etegram.BaseURL, cfg.Etegram.SecretKey, cfg.Etegram.WebhookSecret, cfg.AllowUnsignedWebhooks))
	}
	if len(registry.IDs()) == 0 {
		logger.Log.Warn("No payment providers configured; payment endpoints will reject requests")
	}

	reconciler := payments.NewReconciler(registry, paymentRepo, workOrderRepo, producer, logger.Log)
	refunds := payments.NewRefundService(registry, paymentRepo, logger.Log)

	tokens := services.NewTokenService(cfg.JWTSecret)

	var mailer services.EmailSender
	if smtp, err := services.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass); err != nil {
		logger.Log.Warn("SMTP not configured; email notifications disabled", zap.Error(err))
		mailer = &services.NoopEmailSender{Logger: logger.Log}
	} else {
		mailer = smtp
	}

	attachments, err := storage.NewAttachmentStore(context.Background(), cfg.S3Bucket, cfg.S3Region)
	if err != nil {
		logger.Log.Warn("S3 attachment store unavailable", zap.Error(err))
	}

	ctrl := routes.Controllers{
		Auth: &controllers.AuthController{
			Users:  userRepo,
			Tokens: tokens,
			Logger: logger.Log,
		},
		WorkOrders: &controllers.WorkOrderController{
			Repo:   workOrderRepo,
			Users:  userRepo,
			Mailer: mailer,
			Logger: logger.Log,
		},
		Payments: &controllers.PaymentController{
			Registry:    registry,
			Reconciler:  reconciler,
			Refunds:     refunds,
			Repo:        paymentRepo,
			WorkOrders:  workOrderRepo,
			Logger:      logger.Log,
			FrontendURL: cfg.FrontendURL,
		},
		Webhooks: &controllers.WebhookController{
			Registry:   registry,
			Reconciler: reconciler,
			Logger:     logger.Log,
		},
		Products: &controllers.ProductController{
			Repo:   productRepo,
			Cache:  controllers.NewProductCache(redisClient, logger.Log),
			Logger: logger.Log,
		},
		Tickets: &controllers.TicketController{
			Repo:   ticketRepo,
			Users:  userRepo,
			Mailer: mailer,
			Logger: logger.Log,
		},
		Uploads: &controllers.UploadController{
			Store:   attachments,
			Tickets: ticketRepo,
			Logger:  logger.Log,
		},
		Admin: &controllers.AdminController{
			Users:      userRepo,
			WorkOrders: workOrderRepo,
			Logger:     logger.Log,
		},
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	routes.Register(r, tokens, ctrl)

	logger.Log.Info("Starting FixHub backend", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed", zap.Error(err))
	}
}
