package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/transfers/internal/api/handlers"
	"github.com/wms-platform/transfers/internal/application"
	"github.com/wms-platform/transfers/internal/config"
	"github.com/wms-platform/transfers/internal/infrastructure/clients"
	productEvents "github.com/wms-platform/transfers/internal/infrastructure/kafka"
	statsRepo "github.com/wms-platform/transfers/internal/infrastructure/mongodb"
	"github.com/wms-platform/transfers/pkg/cloudevents"
	"github.com/wms-platform/transfers/pkg/kafka"
	"github.com/wms-platform/transfers/pkg/logging"
	"github.com/wms-platform/transfers/pkg/metrics"
	"github.com/wms-platform/transfers/pkg/middleware"
	"github.com/wms-platform/transfers/pkg/mongodb"
	"github.com/wms-platform/transfers/pkg/resilience"
	"github.com/wms-platform/transfers/pkg/tracing"
)

const serviceName = "transfers-order-view"

func main() {
	cfg, err := config.Load()

	logConfig := logging.DefaultConfig(serviceName)
	if err == nil {
		logConfig.Level = logging.LogLevel(cfg.LogLevel)
		logConfig.Environment = cfg.Environment
	}
	logger := logging.New(logConfig)
	logger.SetDefault()

	if err != nil {
		logger.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	logger.Info("Starting transfer order view API")
	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = cfg.Tracing.Endpoint
	tracingConfig.Environment = cfg.Environment
	tracingConfig.Enabled = cfg.Tracing.Enabled
	tracingConfig.SampleRate = cfg.Tracing.SampleRate

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	m := metrics.New(metrics.DefaultConfig(serviceName))
	breakers := resilience.NewCircuitBreakerRegistry(logger.Logger, m)

	clientConfig := func(baseURL, service string) clients.ClientConfig {
		return clients.ClientConfig{BaseURL: baseURL, Service: service, Timeout: cfg.RequestTimeout}
	}
	searchClient := clients.NewSearchClient(clientConfig(cfg.Backends.SearchURL, "search"), logger, m, breakers.Get("search"))
	omsClient := clients.NewOMSClient(clientConfig(cfg.Backends.OMSURL, "oms"), logger, m, breakers.Get("oms"))

	logger.Info("Service clients initialized",
		"search_service", cfg.Backends.SearchURL,
		"oms_service", cfg.Backends.OMSURL,
	)

	// Item statistics come from the OMS or from the Mongo projection
	var stats application.StatsService = omsClient
	var mongoClient *mongodb.Client
	if cfg.MongoDB.Enabled {
		mongoConfig := mongodb.DefaultConfig()
		mongoConfig.URI = cfg.MongoDB.URI
		mongoConfig.Database = cfg.MongoDB.Database

		mongoClient, err = mongodb.NewClient(ctx, mongoConfig)
		if err != nil {
			logger.WithError(err).Error("Failed to connect to MongoDB")
			os.Exit(1)
		}
		defer func() {
			if err := mongoClient.Close(context.Background()); err != nil {
				logger.WithError(err).Error("Failed to disconnect from MongoDB")
			}
		}()
		stats = statsRepo.NewItemStatsRepository(mongoClient.Database(), cfg.Stats.Collection, m)
		logger.Info("Item stats served from MongoDB", "database", cfg.MongoDB.Database, "collection", cfg.Stats.Collection)
	}

	// Product resolution goes to the product service or onto Kafka
	var resolver application.ProductResolver
	if cfg.Kafka.Enabled {
		kafkaConfig := kafka.DefaultConfig()
		kafkaConfig.Brokers = cfg.Kafka.Brokers
		kafkaConfig.ClientID = cfg.Kafka.ClientID

		producer := kafka.NewProducer(kafkaConfig)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.WithError(err).Error("Failed to close Kafka producer")
			}
		}()
		factory := cloudevents.NewEventFactory(cloudevents.SourceTransferView)
		resolver = productEvents.NewProductRequestPublisher(producer, factory, cfg.Kafka.Topic, m)
		logger.Info("Product requests published to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		resolver = clients.NewProductClient(clientConfig(cfg.Backends.ProductURL, "product"), logger, m, breakers.Get("product"))
	}

	dispatcher := application.NewProductDispatcher(resolver, application.DispatcherConfig{
		BatchSize:   cfg.Products.BatchSize,
		Concurrency: cfg.Products.Concurrency,
		Timeout:     cfg.Products.Timeout,
	}, logger, m)

	states, err := application.NewStateStore(cfg.Sessions.CacheSize, m)
	if err != nil {
		logger.WithError(err).Error("Failed to create session store")
		os.Exit(1)
	}

	listService := application.NewOrderListService(searchClient, stats, dispatcher, states, logger, m)
	detailService := application.NewOrderDetailService(application.OrderDetailBackends{
		Orders:     omsClient,
		Shipments:  omsClient,
		Facilities: omsClient,
		Stores:     omsClient,
		Stats:      stats,
	}, cfg.DetailDefaults, dispatcher, states, logger, m)
	shipmentService := application.NewShipmentService(omsClient, dispatcher, states, logger, m)

	orderHandler := handlers.NewOrderHandler(listService, detailService, shipmentService, logger)

	// Setup Gin router with middleware
	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		if mongoClient == nil {
			return nil
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return mongoClient.HealthCheck(pingCtx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	orderHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: 2 * cfg.RequestTimeout,
	}

	go func() {
		logger.Info("Server started", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if err := dispatcher.Drain(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Product dispatch did not drain")
	}

	logger.Info("Server stopped")
}
