package estimate

import (
	"math"
	"strings"

	"traffic-signal-optimizer-go/internal/geo"
	"traffic-signal-optimizer-go/internal/model"
	"traffic-signal-optimizer-go/internal/peak"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Config диапазоны случайных множителей базовой оценки
type Config struct {
	QueueFactor Range `yaml:"queue_factor" json:"queue_factor"`
	DelayFactor Range `yaml:"delay_factor" json:"delay_factor"`
}

// DefaultConfig множители очереди 1–4% и задержки 2–5% от числа машин
func DefaultConfig() Config {
	return Config{
		QueueFactor: Range{Min: 0.01, Max: 0.04},
		DelayFactor: Range{Min: 0.02, Max: 0.05},
	}
}

// Плотность по цвету загруженности на карте
var colorDensity = map[string]float64{
	"red":    60,
	"yellow": 40,
	"green":  10,
}

const (
	defaultDensity    = 40.0
	heavyDensity      = 50.0
	minDensity        = 5.0
	maxDensity        = 100.0
	minDelayReduction = 5.0
	maxDelayReduction = 30.0
)

var topologyDelayFactor = map[model.Topology]float64{
	model.FourWay:    1.0,
	model.TJunction:  0.8,
	model.Roundabout: 0.6,
	model.Diamond:    1.1,
}

// LiveInput данные для оценки выигрыша в live-режиме
type LiveInput struct {
	Topology       model.Topology
	Density        float64
	OriginalCycle  int
	OptimizedCycle int
	TravelTime     float64
	OptimizedGreen []int
}

// Estimator оценивает очередь, задержку и экономию времени в пути
type Estimator struct {
	cfg     Config
	geoCalc *geo.Calculator
	logger  *logrus.Logger
}

// NewEstimator создает оценщик
func NewEstimator(cfg Config, geoCalc *geo.Calculator, logger *logrus.Logger) *Estimator {
	return &Estimator{cfg: cfg, geoCalc: geoCalc, logger: logger}
}

// Baseline: очередь и задержка как доля от числа машин со случайным множителем
func (e *Estimator) Baseline(totalVehicles float64, sampler Sampler) model.MetricsEstimate {
	return model.MetricsEstimate{
		AvgQueueLength: round2(totalVehicles * sampler.Sample(e.cfg.QueueFactor)),
		AvgDelayTime:   round2(totalVehicles * sampler.Sample(e.cfg.DelayFactor)),
	}
}

// Live оценивает снижение задержки и экономию времени в пути.
// Нижние границы гарантируют ненулевой правдоподобный выигрыш.
func (e *Estimator) Live(in LiveInput) model.MetricsEstimate {
	factor, ok := topologyDelayFactor[in.Topology]
	if !ok {
		factor = 1.0
	}

	cycleDelta := math.Max(1, math.Abs(float64(in.OriginalCycle-in.OptimizedCycle)))
	reduction := math.Round(math.Max(10, in.Density) / 60 * cycleDelta * factor)
	reduction = lo.Clamp(reduction, minDelayReduction, maxDelayReduction)

	travel := in.TravelTime
	minSaved := math.Max(4, math.Round(travel*0.067))
	intersections := math.Max(1, math.Round(travel/300))
	saved := math.Max(minSaved, math.Min(travel*0.2, reduction*intersections*0.4))
	optimized := math.Max(travel*0.8, travel-saved)

	return model.MetricsEstimate{
		AvgDelayTime:            EstimatedDelayTime(in.Density, in.OptimizedGreen),
		EstimatedDelayReduction: reduction,
		TimeSaved:               round2(saved),
		OptimizedTravelTime:     round2(optimized),
	}
}

// EstimatedDelayTime задержка как доля плотности от среднего зеленого
func EstimatedDelayTime(density float64, green []int) float64 {
	if len(green) == 0 {
		return 0
	}
	avg := float64(lo.Sum(green)) / float64(len(green))
	return math.Round(density / 60 * avg)
}

// VehicleDensity синтетическая плотность потока по цвету загруженности,
// времени суток и средней скорости на участке
func (e *Estimator) VehicleDensity(color string, hour int, travelTime float64, distance string) float64 {
	key := strings.ToLower(strings.TrimSpace(color))
	density, ok := colorDensity[key]
	if !ok {
		e.logger.Warnf("Неизвестный цвет загруженности %q, используем %.0f", color, defaultDensity)
		density = defaultDensity
	}

	switch peak.ScheduledPeriod(hour) {
	case model.PeriodPeak:
		density *= 1.3
	case model.PeriodNight:
		density *= 0.7
	}

	distanceKm, err := e.geoCalc.ParseDistanceKm(distance)
	if err != nil {
		e.logger.WithError(err).Warn("Не удалось разобрать расстояние, плотность без поправки на скорость")
		return clampDensity(density)
	}
	speed, err := e.geoCalc.SpeedKmh(distanceKm, travelTime)
	if err != nil {
		e.logger.WithError(err).Warn("Не удалось оценить скорость, плотность без поправки на скорость")
		return clampDensity(density)
	}

	switch {
	case speed < 20:
		density *= 1.5
	case speed < 40:
		density *= 1.2
	}
	e.logger.Debugf("Средняя скорость %.1f км/ч, плотность %.1f", speed, density)

	return clampDensity(density)
}

// IsHeavy плотность выше порога тяжелого движения
func IsHeavy(density float64) bool {
	return density > heavyDensity
}

func clampDensity(density float64) float64 {
	return round2(lo.Clamp(density, minDensity, maxDensity))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
