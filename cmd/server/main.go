package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/colabah/style-dna-service/config"
	"github.com/colabah/style-dna-service/internal/alerts"
	"github.com/colabah/style-dna-service/internal/api/rest"
	"github.com/colabah/style-dna-service/internal/integration/shopify"
	"github.com/colabah/style-dna-service/internal/kafka"
	"github.com/colabah/style-dna-service/internal/kafka/producer"
	"github.com/colabah/style-dna-service/internal/metrics"
	"github.com/colabah/style-dna-service/internal/service"
	"github.com/colabah/style-dna-service/pkg/logger"
)

var log *logger.Logger

func init() {
	if err := godotenv.Load(); err != nil {
		// Missing .env file is fine
	}

	logLevel := logger.INFO
	if os.Getenv("DEBUG") == "true" || os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = logger.DEBUG
	}
	log = logger.New(logLevel)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	if !cfg.Shopify.Installed() {
		log.Warn("No Shopify Admin API context configured; all save routes will return 401")
	}

	// Prometheus registry and workflow metrics
	promRegistry := prometheus.NewRegistry()
	styleMetrics := metrics.NewStyleMetrics(promRegistry, log)

	// Ops alerts, disabled without bot credentials
	notifier := alerts.NewTelegramNotifier(cfg.Telegram, log)

	// Workflow event producer, best effort and optional
	var profileProducer producer.ProfileProducer
	if cfg.Kafka.Enabled {
		kafkaConfig := kafka.NewConfig(cfg.Kafka.Brokers)
		saramaConfig := kafka.NewSaramaConfig(kafkaConfig)

		kafkaProducer, err := sarama.NewSyncProducer(kafkaConfig.Brokers, saramaConfig)
		if err != nil {
			log.Fatal("Failed to create Kafka producer: %v", err)
		}
		defer kafkaProducer.Close()

		profileProducer = producer.NewKafkaProfileProducer(kafkaProducer, log)
	}

	// Admin API client and the workflow service on top of it
	directory := shopify.NewClient(shopify.Config{
		ShopDomain:  cfg.Shopify.ShopDomain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
	}, styleMetrics, log)

	svc := service.NewStyleProfileService(directory, service.Options{
		AllowGuest: cfg.Workflow.AllowGuest,
		SendInvite: cfg.Workflow.SendInvite,
	}, styleMetrics, profileProducer, notifier, log)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := rest.SetupRouter(log, promRegistry, cfg, svc)

	server := rest.NewServer(router, cfg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
