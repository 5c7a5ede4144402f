package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cart-service/config"
	"cart-service/internal/api"
	"cart-service/internal/broker"
	"cart-service/internal/cart"
	"cart-service/internal/catalog"
	"cart-service/internal/notify"
	"cart-service/internal/pricing"
	"cart-service/internal/redisclient"
	"cart-service/internal/service"
	"cart-service/internal/store"
	"cart-service/internal/util"
	"cart-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting cart service")

	tp, err := util.InitTracer("cart-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	cartProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicCart)
	defer cartProducer.Close()
	notifProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicNotification)
	defer notifProducer.Close()
	log.Println("Kafka producers initialized")

	eventPublisher := broker.NewEventPublisher(cartProducer)
	notifier := notify.NewKafkaNotifier(notifProducer)

	supplier := catalog.NewSupplier(db, redisClient)

	ctx := context.Background()
	if err := supplier.SyncCatalogToRedis(ctx); err != nil {
		log.Printf("Failed to sync catalog to Redis: %v", err)
	}

	rules := pricing.Rules{
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		CartShippingFee:       cfg.Pricing.CartShippingFee,
		ExpressShippingFee:    cfg.Pricing.ExpressShippingFee,
	}
	promos := pricing.DefaultPromoTable()
	sessions := cart.NewRegistry()

	cartService := service.NewCartService(sessions, supplier, rules, promos, eventPublisher, notifier)
	gateway := service.NewHostedGateway(cfg.Payment.GatewayKeyID, cfg.Payment.SuccessRate)
	checkoutService := service.NewCheckoutService(
		cartService,
		sessions,
		rules,
		gateway,
		redisClient,
		time.Duration(cfg.Payment.IdempotencyTTL)*time.Second,
		cfg.Payment.Currency,
		eventPublisher,
		notifier,
	)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	notifConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicNotification, cfg.Kafka.ConsumerGroup)
	notifWorker := worker.NewNotificationWorker(notifConsumer)
	go func() {
		if err := notifWorker.Start(workerCtx); err != nil {
			log.Printf("Notification worker error: %v", err)
		}
	}()

	auditConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCart, cfg.Kafka.AuditGroup)
	auditWorker := worker.NewOrderAuditWorker(auditConsumer)
	go func() {
		if err := auditWorker.Start(workerCtx); err != nil {
			log.Printf("Order audit worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(cartService, checkoutService, supplier)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	notifWorker.Stop()
	auditWorker.Stop()

	log.Println("Server exited")
}
