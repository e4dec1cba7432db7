package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/diagnostic/pkg/common/config"
	"github.com/synaptica-ai/diagnostic/pkg/common/database"
	"github.com/synaptica-ai/diagnostic/pkg/common/kafka"
	"github.com/synaptica-ai/diagnostic/pkg/common/logger"
	"github.com/synaptica-ai/diagnostic/pkg/diagnostic"
	"github.com/synaptica-ai/diagnostic/pkg/gateway/limiter"
	"github.com/synaptica-ai/diagnostic/pkg/gateway/middleware"
	"github.com/synaptica-ai/diagnostic/pkg/llm"
	"github.com/synaptica-ai/diagnostic/pkg/observability/metrics"
	"github.com/synaptica-ai/diagnostic/pkg/serving/predictor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel)

	engine, err := predictor.Default(cfg.ModelPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.ModelPath).Fatal("Failed to load model artifact")
	}

	gateway, err := llm.New(llm.Config{
		Provider:       cfg.LLMProvider,
		RequestTimeout: cfg.LLMRequestTimeout,
		OllamaHost:     cfg.OllamaHost,
		OllamaModel:    cfg.OllamaModel,
		OllamaAPIKey:   cfg.OllamaAPIKey,
		OpenAIAPIKey:   cfg.OpenAIAPIKey,
		OpenAIModel:    cfg.OpenAIModel,
		OpenAIBaseURL:  cfg.OpenAIBaseURL,
	})
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialise LLM gateway")
	}
	logger.Log.WithFields(map[string]interface{}{
		"provider": gateway.Name(),
		"model":    gateway.ChatModel().Model,
		"endpoint": gateway.ChatModel().Endpoint,
	}).Info("LLM gateway ready")

	var publisher diagnostic.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaDiagnosticTopic)
		defer producer.Close()
		publisher = producer
	}

	var rateLimiter limiter.Limiter
	if cfg.RateLimitRPS > 0 {
		if redisClient := database.GetRedis(cfg); redisClient != nil {
			defer database.CloseRedis()
			rateLimiter = limiter.NewRedis(redisClient, cfg.RateLimitBurst, time.Second)
		} else {
			rateLimiter = limiter.NewLocal(cfg.RateLimitRPS, cfg.RateLimitBurst)
		}
	}

	service := diagnostic.NewService(engine, gateway, publisher)

	router := mux.NewRouter()
	router.Use(middleware.Logging, middleware.Recovery, metrics.Middleware, middleware.BodyLimit(cfg.MaxRequestBody))
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	diagnostic.NewHTTPHandler(service, rateLimiter).Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      middleware.CORS(router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Diagnostic Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Diagnostic Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Diagnostic Service stopped")
}
