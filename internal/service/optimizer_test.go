package service

import (
	"errors"
	"fmt"
	"io"
	"math"
	"testing"

	"traffic-signal-optimizer-go/internal/estimate"
	"traffic-signal-optimizer-go/internal/geo"
	"traffic-signal-optimizer-go/internal/model"
	"traffic-signal-optimizer-go/internal/peak"
	"traffic-signal-optimizer-go/internal/timing"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

func newTestOptimizer(mode peak.Mode) *Optimizer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewOptimizer(
		peak.NewClassifier(mode, logger),
		timing.NewPlanner(),
		timing.NewWeightedAllocator(),
		estimate.NewEstimator(estimate.DefaultConfig(), geo.NewCalculator(), logger),
		estimate.MidpointSamplers(),
		logger,
	)
}

func mondayWithEveningPeak() []model.VolumeSample {
	var samples []model.VolumeSample
	// Среда идет первой, вывод все равно должен начинаться с понедельника
	samples = append(samples,
		model.VolumeSample{Day: model.Wednesday, Hour: 10, TotalVehicles: 400},
		model.VolumeSample{Day: model.Wednesday, Hour: 9, TotalVehicles: 200},
	)
	for hour := 23; hour >= 0; hour-- {
		total := 100.0
		if hour == 17 {
			total = 1000
		}
		samples = append(samples, model.VolumeSample{Day: model.Monday, Hour: hour, TotalVehicles: total})
	}
	return samples
}

func TestRun_OrderAndPeakPlan(t *testing.T) {
	o := newTestOptimizer(peak.ModeStatistical)

	result, err := o.Run(mondayWithEveningPeak(), model.FourWay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rows) != 26 {
		t.Fatalf("expected 26 rows, got %d", len(result.Rows))
	}

	for i := 0; i < 24; i++ {
		if result.Rows[i].Day != model.Monday || result.Rows[i].Hour != i {
			t.Fatalf("row %d is %s %d, expected Monday %d", i, result.Rows[i].Day, result.Rows[i].Hour, i)
		}
	}
	if result.Rows[24].Day != model.Wednesday || result.Rows[24].Hour != 9 || result.Rows[25].Hour != 10 {
		t.Errorf("unexpected Wednesday rows: %+v / %+v", result.Rows[24].TimingPlan, result.Rows[25].TimingPlan)
	}

	evening := result.Rows[17]
	if evening.Regime.Period != model.PeriodPeak {
		t.Errorf("17:00 should be peak, got %s", evening.Regime)
	}
	if evening.CycleLength != 120 {
		t.Errorf("peak cycle = %d, expected 120", evening.CycleLength)
	}
	if lo.Sum(evening.Green) > 120-4*5 {
		t.Errorf("green %v exceeds budget", evening.Green)
	}
	if evening.TotalCycleTime > evening.CycleLength {
		t.Errorf("total cycle %d exceeds planned %d", evening.TotalCycleTime, evening.CycleLength)
	}
	if fmt.Sprint(evening.DirectionVehicles) != "[250 250 250 250]" {
		t.Errorf("even split expected, got %v", evening.DirectionVehicles)
	}
	if evening.Metrics.AvgQueueLength != 25 || evening.Metrics.AvgDelayTime != 35 {
		t.Errorf("unexpected metrics %+v", evening.Metrics)
	}

	if result.Rows[3].Regime.Period != model.PeriodNonPeak || result.Rows[3].CycleLength != 90 {
		t.Errorf("03:00 should be non-peak with cycle 90, got %s/%d", result.Rows[3].Regime, result.Rows[3].CycleLength)
	}
	if result.Rows[25].Regime.Period != model.PeriodPeak || result.Rows[24].Regime.Period != model.PeriodNonPeak {
		t.Errorf("Wednesday 10:00 should be the only peak hour")
	}
	// ночь (22–5): 100; день: (15×100 + 1000 + 200 + 400) / 18
	if result.NightAdvisory != model.NightAdvisoryModerate {
		t.Errorf("night advisory = %s, expected moderate", result.NightAdvisory)
	}
}

func TestRun_BoundsHoldForEveryRow(t *testing.T) {
	for _, topology := range model.Topologies {
		for _, mode := range []peak.Mode{peak.ModeStatistical, peak.ModeFixedSchedule} {
			o := newTestOptimizer(mode)
			result, err := o.Run(mondayWithEveningPeak(), topology)
			if err != nil {
				t.Fatalf("%s/%s: %v", topology, mode, err)
			}
			n, _ := topology.DirectionCount()
			for _, row := range result.Rows {
				bounds := timing.BoundsFor(topology, row.Regime)
				if len(row.Green) != n || len(row.Red) != n {
					t.Fatalf("%s: wrong vector length in %+v", topology, row.TimingPlan)
				}
				for _, g := range row.Green {
					if g < bounds.MinGreen || g > bounds.MaxGreen {
						t.Errorf("%s %s: green %d outside [%d,%d]", topology, row.Regime, g, bounds.MinGreen, bounds.MaxGreen)
					}
				}
				if lo.Sum(row.Green) > row.CycleLength-n*row.Clearance {
					t.Errorf("%s %s: green %v over budget", topology, row.Regime, row.Green)
				}
			}
		}
	}
}

func TestRun_Errors(t *testing.T) {
	o := newTestOptimizer(peak.ModeStatistical)

	_, err := o.Run(nil, model.Topology("Cloverleaf"))
	if !errors.Is(err, model.ErrUnsupportedTopology) {
		t.Errorf("expected ErrUnsupportedTopology, got %v", err)
	}

	_, err = o.Run([]model.VolumeSample{{Hour: 8, TotalVehicles: 30, PerDirectionVehicles: []float64{10, 10, 10}}}, model.FourWay)
	if !errors.Is(err, model.ErrSignalCountMismatch) {
		t.Errorf("expected ErrSignalCountMismatch, got %v", err)
	}

	_, err = o.Run([]model.VolumeSample{{Hour: 25, TotalVehicles: 30}}, model.FourWay)
	if !errors.Is(err, model.ErrInvalidSample) {
		t.Errorf("expected ErrInvalidSample, got %v", err)
	}

	_, err = o.Run([]model.VolumeSample{{Hour: 8, TotalVehicles: math.Inf(1)}, {Hour: 9, TotalVehicles: 100}}, model.FourWay)
	if !errors.Is(err, model.ErrInvalidSample) {
		t.Errorf("expected ErrInvalidSample for infinite volume, got %v", err)
	}

	result, err := o.Run(nil, model.FourWay)
	if err != nil || len(result.Rows) != 0 || result.NightAdvisory != model.NightAdvisoryUnknown {
		t.Errorf("empty dataset should give empty result, got %+v, %v", result, err)
	}
}

func TestLive_HeavyPeak(t *testing.T) {
	o := newTestOptimizer(peak.ModeStatistical)

	got, err := o.Live(model.LiveSnapshot{
		Color:             "red",
		GreenTimes:        []float64{30, 30, 30, 30},
		RedTimes:          []float64{90, 90, 90, 90},
		Topology:          model.FourWay,
		CurrentHour:       9,
		CurrentTravelTime: 600,
		CurrentDistance:   "10 km",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.VehicleDensity != 78 {
		t.Errorf("density = %v, expected 78", got.VehicleDensity)
	}
	if got.Regime != (model.Regime{Period: model.PeriodPeak, Heavy: true}) {
		t.Errorf("regime = %s, expected heavy-peak", got.Regime)
	}
	if got.CycleLength != 150 || got.TotalCycleTime != 150 {
		t.Errorf("cycle %d / total %d, expected 150 / 150", got.CycleLength, got.TotalCycleTime)
	}
	if lo.Sum(got.OptimizedGreenTimes) != 130 {
		t.Errorf("green %v should fill the 130s budget", got.OptimizedGreenTimes)
	}
	// round(78/60 × 32.5)
	if got.EstimatedDelayTime != 42 {
		t.Errorf("estimated delay = %v, expected 42", got.EstimatedDelayTime)
	}
	if got.TimeSaved != 40 || got.OptimizedTravelTime != 560 {
		t.Errorf("saved %v / optimized %v, expected 40 / 560", got.TimeSaved, got.OptimizedTravelTime)
	}
	for _, r := range got.OptimizedRedTimes {
		if r < 75 || r > 120 {
			t.Errorf("red %d outside heavy band [75,120]", r)
		}
	}
}

func TestLive_Errors(t *testing.T) {
	valid := model.LiveSnapshot{
		Color:      "green",
		GreenTimes: []float64{30, 30, 30},
		RedTimes:   []float64{60, 60, 60},
		Topology:   model.TJunction,
	}

	tests := []struct {
		name   string
		modify func(s *model.LiveSnapshot)
		target error
	}{
		{"no colour", func(s *model.LiveSnapshot) { s.Color = " " }, model.ErrMissingRequiredField},
		{"no green", func(s *model.LiveSnapshot) { s.GreenTimes = nil }, model.ErrMissingRequiredField},
		{"no red", func(s *model.LiveSnapshot) { s.RedTimes = nil }, model.ErrMissingRequiredField},
		{"unknown topology", func(s *model.LiveSnapshot) { s.Topology = "Star" }, model.ErrUnsupportedTopology},
		{"green count", func(s *model.LiveSnapshot) { s.GreenTimes = []float64{30, 30, 30, 30} }, model.ErrSignalCountMismatch},
		{"red count", func(s *model.LiveSnapshot) { s.RedTimes = []float64{60, 60} }, model.ErrSignalCountMismatch},
	}

	o := newTestOptimizer(peak.ModeStatistical)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snapshot := valid
			tc.modify(&snapshot)
			if _, err := o.Live(snapshot); !errors.Is(err, tc.target) {
				t.Errorf("expected %v, got %v", tc.target, err)
			}
		})
	}

	if _, err := o.Live(valid); err != nil {
		t.Errorf("valid snapshot failed: %v", err)
	}
}

func TestLive_MalformedDistanceStillSucceeds(t *testing.T) {
	o := newTestOptimizer(peak.ModeStatistical)
	got, err := o.Live(model.LiveSnapshot{
		Color:             "yellow",
		GreenTimes:        []float64{20, 20, 20, 20},
		RedTimes:          []float64{60, 60, 60, 60},
		Topology:          model.Roundabout,
		CurrentHour:       23,
		CurrentTravelTime: 300,
		CurrentDistance:   "two blocks",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 40 × 0.7 ночью, без поправки на скорость
	if got.VehicleDensity != 28 || got.Regime.Period != model.PeriodNight || got.Regime.Heavy {
		t.Errorf("unexpected density %v / regime %s", got.VehicleDensity, got.Regime)
	}
}
