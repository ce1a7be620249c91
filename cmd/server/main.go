package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	docs "main/docs"
	appinstruments "main/internal/application/service/instruments"
	appquotes "main/internal/application/service/quotes"
	apptrading "main/internal/application/service/trading"
	"main/internal/config"
	interfaces "main/internal/domain/interfaces"
	infrabroker "main/internal/infrastructure/broker"
	"main/internal/infrastructure/invest"
	infrahttp "main/internal/interfaces/http"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	docs.SwaggerInfo.BasePath = "/api"
	docs.SwaggerInfo.Host = cfg.HTTP.Addr()

	if !cfg.Invest.HasToken() {
		logger.Warn("INVEST_TOKEN is not set, running in limited mode")
	}

	gateway, err := invest.NewGateway(ctx, invest.Config{
		Endpoint:      cfg.Invest.Endpoint,
		Token:         cfg.Invest.Token,
		AppName:       cfg.Invest.AppName,
		SkipTLSVerify: cfg.Invest.SkipTLSVerify,
	}, logger)
	if err != nil {
		logger.Fatalf("failed to init upstream gateway: %v", err)
	}
	defer func() {
		if stopErr := gateway.Close(); stopErr != nil {
			logger.Errorf("stop upstream gateway: %v", stopErr)
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var events interfaces.OrderEventPublisher
	if cfg.RabbitMQ.URL != "" {
		rabbitConn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			logger.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbitConn.Close()

		publisher, err := infrabroker.NewPublisher(rabbitConn, cfg.RabbitMQ.OrdersExchange, logger)
		if err != nil {
			logger.Fatalf("failed to init order publisher: %v", err)
		}
		defer publisher.Close()
		events = publisher
	}

	resolver := appinstruments.NewResolver(gateway)
	quotesService := appquotes.NewService(gateway, resolver, cfg.Quotes.TTL)
	tradingService := apptrading.NewService(gateway, resolver, events, logger)

	handler := infrahttp.NewHandler(quotesService, tradingService, resolver, redisClient, cfg, logger)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler,
	}

	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
