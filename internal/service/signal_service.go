package service

import (
	"context"
	"fmt"
	"io"
	"os"

	"traffic-signal-optimizer-go/internal/client"
	"traffic-signal-optimizer-go/internal/dataset"
	"traffic-signal-optimizer-go/internal/model"
	"traffic-signal-optimizer-go/internal/storage"
	"traffic-signal-optimizer-go/internal/timing"

	"github.com/sirupsen/logrus"
)

// Forecaster внешний источник прогнозного ряда интенсивности
type Forecaster interface {
	Forecast(ctx context.Context, samples []model.VolumeSample) ([]model.VolumeSample, error)
}

// BatchRequest параметры пакетной оптимизации файла
type BatchRequest struct {
	Topology model.Topology
	Strategy timing.Strategy
	Forecast bool
	Seed     uint64
}

// SignalService связывает временное хранилище, CSV и оптимизатор
type SignalService struct {
	optimizer  *Optimizer
	forecaster Forecaster
	logger     *logrus.Logger
}

// NewSignalService создает сервис; forecaster может быть nil
func NewSignalService(optimizer *Optimizer, forecaster Forecaster, logger *logrus.Logger) *SignalService {
	return &SignalService{
		optimizer:  optimizer,
		forecaster: forecaster,
		logger:     logger,
	}
}

// OutputFilename имя выходного файла для топологии
func OutputFilename(topology model.Topology) string {
	return fmt.Sprintf("optimized_%s_signals.csv", topology.Slug())
}

// OptimizeFile сохраняет загруженный датасет в рабочую директорию, строит
// планы и пишет таблицу в ws.OutputPath. Освобождение ws на вызывающем.
func (s *SignalService) OptimizeFile(ctx context.Context, ws *storage.Workspace, data io.Reader, req BatchRequest) (*model.BatchResult, error) {
	if _, err := req.Topology.DirectionCount(); err != nil {
		return nil, err
	}
	if _, err := ws.SaveInput(data); err != nil {
		return nil, err
	}

	input, err := os.Open(ws.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	samples, err := dataset.ReadSamples(input, req.Topology)
	input.Close()
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Прочитано %d записей из %s", len(samples), ws.InputPath)

	if req.Forecast {
		if samples, err = s.forecast(ctx, samples); err != nil {
			return nil, err
		}
	}

	optimizer := s.optimizer
	if req.Strategy != "" {
		optimizer = optimizer.WithAllocator(timing.NewAllocator(req.Strategy, req.Seed))
	}
	result, err := optimizer.Run(samples, req.Topology)
	if err != nil {
		return nil, err
	}

	output, err := os.Create(ws.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	if err := dataset.WritePlans(output, result.Rows, req.Topology); err != nil {
		output.Close()
		return nil, fmt.Errorf("failed to write plans: %w", err)
	}
	if err := output.Close(); err != nil {
		return nil, fmt.Errorf("failed to close output file: %w", err)
	}

	s.logger.Infof("Результат записан в %s", ws.OutputPath)
	return result, nil
}

// OptimizeLive разовая оптимизация по снимку
func (s *SignalService) OptimizeLive(snapshot model.LiveSnapshot) (*model.LiveResult, error) {
	return s.optimizer.Live(snapshot)
}

func (s *SignalService) forecast(ctx context.Context, samples []model.VolumeSample) ([]model.VolumeSample, error) {
	if s.forecaster == nil {
		return nil, fmt.Errorf("%w: forecast service is not configured", client.ErrUpstream)
	}
	s.logger.Info("Запрашиваем прогноз интенсивности")
	forecast, err := s.forecaster.Forecast(ctx, samples)
	if err != nil {
		s.logger.Errorf("Ошибка сервиса прогноза: %v", err)
		return nil, fmt.Errorf("failed to forecast volumes: %w", err)
	}
	return forecast, nil
}
