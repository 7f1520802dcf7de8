package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"traffic-signal-optimizer-go/internal/estimate"
	"traffic-signal-optimizer-go/internal/model"
	"traffic-signal-optimizer-go/internal/peak"
	"traffic-signal-optimizer-go/internal/timing"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Optimizer прогоняет классификатор, планировщик, распределитель и оценщик
// по датасету или по одному live-снимку. Состояния между вызовами не хранит.
type Optimizer struct {
	classifier *peak.Classifier
	planner    *timing.Planner
	allocator  timing.Allocator
	estimator  *estimate.Estimator
	samplers   estimate.SamplerFactory
	logger     *logrus.Logger
}

// NewOptimizer создает оптимизатор
func NewOptimizer(
	classifier *peak.Classifier,
	planner *timing.Planner,
	allocator timing.Allocator,
	estimator *estimate.Estimator,
	samplers estimate.SamplerFactory,
	logger *logrus.Logger,
) *Optimizer {
	if samplers == nil {
		samplers = estimate.UniformSamplers()
	}
	return &Optimizer{
		classifier: classifier,
		planner:    planner,
		allocator:  allocator,
		estimator:  estimator,
		samplers:   samplers,
		logger:     logger,
	}
}

// WithAllocator возвращает копию оптимизатора с другой стратегией распределения
func (o *Optimizer) WithAllocator(allocator timing.Allocator) *Optimizer {
	clone := *o
	clone.allocator = allocator
	return &clone
}

// Run строит план для каждой пары (день, час) из датасета в порядке
// понедельник..воскресенье и по возрастанию часа
func (o *Optimizer) Run(samples []model.VolumeSample, topology model.Topology) (*model.BatchResult, error) {
	n, err := topology.DirectionCount()
	if err != nil {
		return nil, err
	}
	for i, s := range samples {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		if len(s.PerDirectionVehicles) > 0 {
			if _, err := timing.CheckSignalCount(topology, "per-direction vehicles", len(s.PerDirectionVehicles)); err != nil {
				return nil, fmt.Errorf("sample %d: %w", i, err)
			}
		}
	}

	o.logger.Infof("Оптимизация %d записей для перекрестка %s (%d направлений), классификатор %s",
		len(samples), topology, n, o.classifier.Mode())

	classifications := o.classifier.ClassifyByDay(samples, model.Days...)
	means := peak.HourlyMeans(samples)
	directions := directionMeans(samples, n)
	sampler := o.samplers()

	result := &model.BatchResult{
		Topology:      topology,
		Rows:          []model.PlanRow{},
		NightAdvisory: peak.NightAdvisory(samples),
	}

	for _, day := range model.Days {
		cls, ok := classifications[day]
		if !ok {
			continue
		}
		hours := lo.Keys(means[day])
		sort.Ints(hours)

		for _, hour := range hours {
			total := means[day][hour]
			plan, timingPlan, err := o.planHour(topology, cls.Regime(hour))
			if err != nil {
				return nil, fmt.Errorf("%s %02d:00: %w", day, hour, err)
			}
			timingPlan.Day = day
			timingPlan.Hour = hour

			result.Rows = append(result.Rows, model.PlanRow{
				TimingPlan:        timingPlan,
				Metrics:           o.estimator.Baseline(total, sampler),
				TotalVehicles:     total,
				DirectionVehicles: directions[slot{day, hour}],
			})
			o.logger.Debugf("%s %02d:00 режим %s цикл %d зеленый %v", day, hour, plan.Regime, plan.CycleLength, timingPlan.Green)
		}
	}

	o.logger.Infof("Рассчитано %d планов. %s", len(result.Rows), result.NightAdvisory.Message())
	return result, nil
}

// Live рассчитывает план по текущему снимку перекрестка
func (o *Optimizer) Live(snapshot model.LiveSnapshot) (*model.LiveResult, error) {
	switch {
	case strings.TrimSpace(snapshot.Color) == "":
		return nil, model.MissingField("color")
	case len(snapshot.GreenTimes) == 0:
		return nil, model.MissingField("green_times")
	case len(snapshot.RedTimes) == 0:
		return nil, model.MissingField("red_times")
	}

	n, err := snapshot.Topology.DirectionCount()
	if err != nil {
		return nil, err
	}
	if _, err := timing.CheckSignalCount(snapshot.Topology, "green_times", len(snapshot.GreenTimes)); err != nil {
		return nil, err
	}
	if _, err := timing.CheckSignalCount(snapshot.Topology, "red_times", len(snapshot.RedTimes)); err != nil {
		return nil, err
	}

	density := o.estimator.VehicleDensity(snapshot.Color, snapshot.CurrentHour, snapshot.CurrentTravelTime, snapshot.CurrentDistance)
	regime := model.Regime{
		Period: peak.ScheduledPeriod(snapshot.CurrentHour),
		Heavy:  estimate.IsHeavy(density),
	}

	plan, timingPlan, err := o.planHour(snapshot.Topology, regime)
	if err != nil {
		return nil, err
	}

	originalCycle := int(math.Round(lo.Sum(snapshot.GreenTimes))) + n*plan.Bounds.Clearance
	metrics := o.estimator.Live(estimate.LiveInput{
		Topology:       snapshot.Topology,
		Density:        density,
		OriginalCycle:  originalCycle,
		OptimizedCycle: timingPlan.TotalCycleTime,
		TravelTime:     snapshot.CurrentTravelTime,
		OptimizedGreen: timingPlan.Green,
	})

	o.logger.Infof("Live-оптимизация %s: плотность %.1f, режим %s, цикл %d -> %d",
		snapshot.Topology, density, regime, originalCycle, timingPlan.TotalCycleTime)

	return &model.LiveResult{
		OptimizedGreenTimes:     timingPlan.Green,
		OptimizedRedTimes:       timingPlan.Red,
		EstimatedDelayTime:      metrics.AvgDelayTime,
		EstimatedDelayReduction: metrics.EstimatedDelayReduction,
		OptimizedTravelTime:     metrics.OptimizedTravelTime,
		TimeSaved:               metrics.TimeSaved,
		CycleLength:             plan.CycleLength,
		TotalCycleTime:          timingPlan.TotalCycleTime,
		Regime:                  regime,
		VehicleDensity:          density,
	}, nil
}

type slot struct {
	day  model.Day
	hour int
}

// directionMeans средний объем по направлениям для каждой пары (день, час);
// строки без разбивки делятся поровну
func directionMeans(samples []model.VolumeSample, n int) map[slot][]float64 {
	sums := make(map[slot][]float64)
	counts := make(map[slot]int)
	for _, s := range samples {
		key := slot{s.Day, s.Hour}
		if sums[key] == nil {
			sums[key] = make([]float64, n)
		}
		for i, v := range s.DirectionVolumes(n) {
			sums[key][i] += v
		}
		counts[key]++
	}
	for key, values := range sums {
		for i := range values {
			values[i] /= float64(counts[key])
		}
	}
	return sums
}

func (o *Optimizer) planHour(topology model.Topology, regime model.Regime) (timing.Plan, model.TimingPlan, error) {
	plan, err := o.planner.Plan(topology, regime)
	if err != nil {
		return timing.Plan{}, model.TimingPlan{}, err
	}
	allocation, err := o.allocator.Allocate(topology, plan.CycleLength, plan.Weights, plan.Bounds)
	if err != nil {
		return timing.Plan{}, model.TimingPlan{}, err
	}
	return plan, model.TimingPlan{
		Regime:         regime,
		CycleLength:    plan.CycleLength,
		Clearance:      plan.Bounds.Clearance,
		Green:          allocation.Green,
		Red:            allocation.Red,
		TotalCycleTime: timing.TotalCycleTime(allocation.Green, plan.Bounds.Clearance),
	}, nil
}
