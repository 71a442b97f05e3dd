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

	"storefront-service/config"
	"storefront-service/internal/api"
	"storefront-service/internal/auth"
	"storefront-service/internal/broker"
	"storefront-service/internal/otp"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
	"storefront-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service")

	tp, err := util.InitTracer(cfg.Observ.JaegerEndpoint)
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

	db, err := store.NewStore(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	checks := []api.ReadinessCheck{{Name: "database", Ping: db.Ping}}

	var codeStore otp.CodeStore
	switch cfg.Auth.OTPStore {
	case "redis":
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")

		codeStore = redisClient
		checks = append(checks, api.ReadinessCheck{Name: "redis", Ping: redisClient.Ping})
	default:
		codeStore = otp.NewMemoryStore()
	}

	var events service.EventPublisher = broker.NewLogPublisher()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var auditWorker *worker.OrderAuditWorker
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer producer.Close()
		log.Println("Kafka producer initialized")
		events = broker.NewEventPublisher(producer)

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		auditWorker = worker.NewOrderAuditWorker(consumer, db)
		go func() {
			if err := auditWorker.Start(workerCtx); err != nil && err != context.Canceled {
				log.Printf("Order audit worker error: %v", err)
			}
		}()
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	issuer := otp.NewIssuer(codeStore, cfg.Auth.OTPTTL)

	services := api.Services{
		Auth:      service.NewAuthService(db, issuer, tokens),
		Stores:    service.NewStoreService(db),
		Products:  service.NewProductService(db),
		Customers: service.NewCustomerService(db),
		Orders:    service.NewOrderService(db, events),
		Public:    service.NewPublicService(db),
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(services, tokens, api.Config{
		Production:     cfg.Server.IsProduction(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Cookies: auth.Cookies{
			Secure: cfg.Auth.CookieSecure,
			MaxAge: int(cfg.Auth.SessionTTL / time.Second),
		},
	}, checks...)
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
	if auditWorker != nil {
		auditWorker.Stop()
	}

	log.Println("Server exited")
}
