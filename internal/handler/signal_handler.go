package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"traffic-signal-optimizer-go/internal/client"
	"traffic-signal-optimizer-go/internal/model"
	"traffic-signal-optimizer-go/internal/service"
	"traffic-signal-optimizer-go/internal/storage"
	"traffic-signal-optimizer-go/internal/timing"
	"traffic-signal-optimizer-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const defaultTopology = model.FourWay

// HealthChecker проверка внешнего сервиса прогноза
type HealthChecker interface {
	CheckHealth(ctx context.Context) (*models.HealthResponse, error)
}

// SignalHandler обрабатывает HTTP запросы оптимизации светофоров
type SignalHandler struct {
	signalService *service.SignalService
	store         *storage.TempStore
	forecast      HealthChecker
	logger        *logrus.Logger
}

// NewSignalHandler создает новый экземпляр SignalHandler; forecast может быть nil
func NewSignalHandler(signalService *service.SignalService, store *storage.TempStore, forecast HealthChecker, logger *logrus.Logger) *SignalHandler {
	return &SignalHandler{
		signalService: signalService,
		store:         store,
		forecast:      forecast,
		logger:        logger,
	}
}

// RegisterRoutes регистрирует маршруты API
func (h *SignalHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/optimize", h.OptimizeDataset)
		api.POST("/optimize/live", h.OptimizeLive)
		api.GET("/topologies", h.ListTopologies)
		api.GET("/health", h.CheckHealth)
	}
}

// OptimizeDataset обрабатывает загрузку CSV и возвращает CSV с планами
// @Summary Оптимизация по датасету
// @Accept multipart/form-data
// @Produce text/csv
// @Param file formData file true "CSV с колонками Day, Hour, Total_Vehicles"
// @Param intersection_type formData string false "Тип перекрестка" default(Four-Way)
// @Param strategy formData string false "weighted или genetic"
// @Param forecast formData bool false "Оптимизировать прогнозный ряд"
// @Router /optimize [post]
func (h *SignalHandler) OptimizeDataset(c *gin.Context) {
	h.logger.Info("Получен запрос на оптимизацию датасета")

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		h.logger.Errorf("Ошибка парсинга multipart form: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ошибка парсинга формы"})
		return
	}

	topology, err := parseTopology(getFormValue(c, []string{"intersection_type", "intersectionType"}))
	if err != nil {
		h.respondError(c, err)
		return
	}

	strategy, err := timing.ParseStrategy(c.PostForm("strategy"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := service.BatchRequest{Topology: topology, Strategy: strategy}
	if value := c.PostForm("forecast"); value != "" {
		if req.Forecast, err = strconv.ParseBool(value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат forecast"})
			return
		}
	}
	if value := c.PostForm("seed"); value != "" {
		if req.Seed, err = strconv.ParseUint(value, 10, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат seed"})
			return
		}
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.logger.Errorf("Ошибка получения файла: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV файл обязателен"})
		return
	}
	defer file.Close()
	h.logger.Infof("Получен файл %s (%d байт), перекресток %s", header.Filename, header.Size, topology)

	filename := service.OutputFilename(topology)
	ws, err := h.store.Open(filename)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer ws.Release()

	result, err := h.signalService.OptimizeFile(c.Request.Context(), ws, file, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Infof("Оптимизация завершена: %d строк", len(result.Rows))
	c.Header("X-Night-Advisory", string(result.NightAdvisory))
	c.Header("X-Night-Advisory-Message", result.NightAdvisory.Message())
	c.FileAttachment(ws.OutputPath, filename)
}

// OptimizeLive рассчитывает план по текущему снимку перекрестка
// @Summary Live-оптимизация
// @Accept json
// @Produce json
// @Success 200 {object} models.LiveOptimizeResponse
// @Router /optimize/live [post]
func (h *SignalHandler) OptimizeLive(c *gin.Context) {
	h.logger.Info("Получен запрос на live-оптимизацию")

	var req models.LiveOptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Ошибка разбора запроса: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	topology, err := parseTopology(req.IntersectionType)
	if err != nil {
		h.respondError(c, err)
		return
	}

	hour := time.Now().Hour()
	if req.CurrentHour != nil {
		hour = *req.CurrentHour
	}

	result, err := h.signalService.OptimizeLive(model.LiveSnapshot{
		Color:             req.Color,
		GreenTimes:        req.GreenTimes,
		RedTimes:          req.RedTimes,
		Topology:          topology,
		CurrentHour:       hour,
		CurrentTravelTime: req.CurrentTravelTime,
		CurrentDistance:   req.CurrentDistance,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.LiveOptimizeResponse{
		OptimizedGreenTimes:     result.OptimizedGreenTimes,
		OptimizedRedTimes:       result.OptimizedRedTimes,
		EstimatedDelayTime:      result.EstimatedDelayTime,
		OptimizedTravelTime:     result.OptimizedTravelTime,
		TimeSaved:               result.TimeSaved,
		CycleLength:             result.CycleLength,
		TotalCycleTime:          result.TotalCycleTime,
		Regime:                  result.Regime.String(),
		VehicleDensity:          result.VehicleDensity,
		EstimatedDelayReduction: result.EstimatedDelayReduction,
	})
}

// ListTopologies возвращает поддерживаемые типы перекрестков
func (h *SignalHandler) ListTopologies(c *gin.Context) {
	c.JSON(http.StatusOK, lo.Map(model.Topologies, func(t model.Topology, _ int) models.TopologyInfo {
		n, _ := t.DirectionCount()
		return models.TopologyInfo{Name: t.String(), Slug: t.Slug(), Directions: n}
	}))
}

// CheckHealth проверяет состояние сервиса
func (h *SignalHandler) CheckHealth(c *gin.Context) {
	h.logger.Debug("Получен запрос проверки здоровья сервиса")

	forecast := "disabled"
	if h.forecast != nil {
		if _, err := h.forecast.CheckHealth(c.Request.Context()); err != nil {
			h.logger.Warnf("Сервис прогноза недоступен: %v", err)
			forecast = "unavailable"
		} else {
			forecast = "healthy"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"message":  "Сервис работает нормально",
		"forecast": forecast,
	})
}

func (h *SignalHandler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Errorf("Ошибка обработки запроса: %v", err)
	} else {
		h.logger.Warnf("Некорректный запрос: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// statusFor переводит ошибки домена в HTTP статусы
func statusFor(err error) int {
	switch {
	case errors.Is(err, client.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrUnsupportedTopology),
		errors.Is(err, model.ErrSignalCountMismatch),
		errors.Is(err, model.ErrMissingRequiredField),
		errors.Is(err, model.ErrInvalidSample),
		errors.Is(err, model.ErrMalformedDistance):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseTopology(value string) (model.Topology, error) {
	if value == "" {
		return defaultTopology, nil
	}
	return model.ParseTopology(value)
}

// getFormValue получает значение из формы, пробуя разные варианты ключей
func getFormValue(c *gin.Context, keys []string) string {
	for _, key := range keys {
		if value := c.PostForm(key); value != "" {
			return value
		}
	}
	return ""
}
