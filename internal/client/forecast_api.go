package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"traffic-signal-optimizer-go/internal/model"
	"traffic-signal-optimizer-go/pkg/models"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// ErrUpstream сервис прогноза недоступен или ответил ошибкой
var ErrUpstream = errors.New("forecast service error")

// ForecastAPIClient клиент внешнего сервиса прогноза интенсивности
type ForecastAPIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewForecastAPIClient создает новый клиент сервиса прогноза
func NewForecastAPIClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *ForecastAPIClient {
	return &ForecastAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Forecast отправляет исторический ряд и получает прогнозный ряд той же формы
func (c *ForecastAPIClient) Forecast(ctx context.Context, samples []model.VolumeSample) ([]model.VolumeSample, error) {
	c.logger.Infof("Отправка %d записей в сервис прогноза", len(samples))

	payload, err := json.Marshal(models.ForecastRequest{Samples: lo.Map(samples, toRecord)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode forecast request: %w", err)
	}

	var apiResponse models.ForecastResponse
	if err := c.do(ctx, http.MethodPost, "/forecast", bytes.NewReader(payload), &apiResponse); err != nil {
		return nil, err
	}
	if apiResponse.Status != "" && apiResponse.Status != "success" {
		return nil, fmt.Errorf("%w: status %s: %s", ErrUpstream, apiResponse.Status, apiResponse.Message)
	}

	forecast := make([]model.VolumeSample, 0, len(apiResponse.Samples))
	for i, record := range apiResponse.Samples {
		sample, err := fromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrUpstream, i, err)
		}
		forecast = append(forecast, sample)
	}

	c.logger.Infof("Получен прогноз: %d записей", len(forecast))
	return forecast, nil
}

// CheckHealth проверяет состояние сервиса прогноза
func (c *ForecastAPIClient) CheckHealth(ctx context.Context) (*models.HealthResponse, error) {
	c.logger.Debug("Проверка здоровья сервиса прогноза")

	var healthResponse models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &healthResponse); err != nil {
		return nil, err
	}
	return &healthResponse, nil
}

func (c *ForecastAPIClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debugf("Отправка %s запроса на %s", method, url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d, body: %s", ErrUpstream, resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %w", ErrUpstream, err)
	}
	return nil
}

func toRecord(s model.VolumeSample, _ int) models.VolumeRecord {
	return models.VolumeRecord{
		Day:                  s.Day.String(),
		Hour:                 s.Hour,
		TotalVehicles:        s.TotalVehicles,
		PerDirectionVehicles: s.PerDirectionVehicles,
	}
}

func fromRecord(r models.VolumeRecord) (model.VolumeSample, error) {
	day, err := model.ParseDay(r.Day)
	if err != nil {
		return model.VolumeSample{}, err
	}
	sample := model.VolumeSample{
		Day:                  day,
		Hour:                 r.Hour,
		TotalVehicles:        r.TotalVehicles,
		PerDirectionVehicles: r.PerDirectionVehicles,
	}
	return sample, sample.Validate()
}
