package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"traffic-signal-optimizer-go/internal/client"
	"traffic-signal-optimizer-go/internal/config"
	"traffic-signal-optimizer-go/internal/estimate"
	"traffic-signal-optimizer-go/internal/geo"
	"traffic-signal-optimizer-go/internal/handler"
	"traffic-signal-optimizer-go/internal/peak"
	"traffic-signal-optimizer-go/internal/service"
	"traffic-signal-optimizer-go/internal/storage"
	"traffic-signal-optimizer-go/internal/timing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const version = "1.0.0"

func main() {
	// Инициализируем логгер
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf("Не удалось загрузить .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Environment != "production" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger.Info("Запуск Traffic Signal Optimizer API Server")

	mode, err := peak.ParseMode(cfg.Optimizer.ClassifierMode)
	if err != nil {
		logger.Fatalf("Ошибка конфигурации классификатора: %v", err)
	}
	strategy, err := timing.ParseStrategy(cfg.Optimizer.Strategy)
	if err != nil {
		logger.Fatalf("Ошибка конфигурации распределителя: %v", err)
	}

	// Инициализируем сервисы
	optimizer := service.NewOptimizer(
		peak.NewClassifier(mode, logger),
		timing.NewPlanner(),
		timing.NewAllocator(strategy, cfg.Optimizer.Seed),
		estimate.NewEstimator(cfg.Optimizer.Estimator, geo.NewCalculator(), logger),
		estimate.UniformSamplers(),
		logger,
	)

	var forecaster service.Forecaster
	var forecastHealth handler.HealthChecker
	if cfg.ForecastAPI.BaseURL != "" {
		forecastClient := client.NewForecastAPIClient(cfg.ForecastAPI.BaseURL, time.Duration(cfg.ForecastAPI.Timeout)*time.Second, logger)
		forecaster, forecastHealth = forecastClient, forecastClient
		logger.Infof("Сервис прогноза: %s", cfg.ForecastAPI.BaseURL)
	} else {
		logger.Info("Сервис прогноза не настроен, forecast=true будет отклоняться")
	}

	signalService := service.NewSignalService(optimizer, forecaster, logger)
	store := storage.NewTempStore(cfg.Server.TempDir, logger)

	// Инициализируем обработчики
	signalHandler := handler.NewSignalHandler(signalService, store, forecastHealth, logger)

	// Настраиваем Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Добавляем middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Регистрируем маршруты
	signalHandler.RegisterRoutes(router)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Traffic Signal Optimizer API Server",
			"version": version,
			"status":  "running",
		})
	})

	// gRPC health check на отдельном порту
	healthServer := health.NewServer()
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	if cfg.Server.GRPCPort > 0 {
		go serveGRPC(grpcServer, fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort), logger)
	}
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Запускаем сервер
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("Сервер запущен на порту %d", cfg.Server.Port)
		logger.Infof("API доступно по адресу: http://localhost:%d/api/v1", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info("Получен сигнал остановки")

	healthServer.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Ошибка остановки сервера: %v", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Сервер остановлен")
}

func serveGRPC(grpcServer *grpc.Server, addr string, logger *logrus.Logger) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatalf("Ошибка запуска gRPC listener на %s: %v", addr, err)
	}
	logger.Infof("gRPC health check на %s", addr)
	if err := grpcServer.Serve(listener); err != nil {
		logger.Errorf("gRPC сервер остановлен: %v", err)
	}
}

// corsMiddleware добавляет заголовки CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Night-Advisory, X-Night-Advisory-Message")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
