package timing

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"traffic-signal-optimizer-go/internal/model"
)

var allRegimes = []model.Regime{
	{Period: model.PeriodPeak},
	{Period: model.PeriodPeak, Heavy: true},
	{Period: model.PeriodNonPeak},
	{Period: model.PeriodNonPeak, Heavy: true},
	{Period: model.PeriodNight},
	{Period: model.PeriodNight, Heavy: true},
}

func TestBaseWeights_SumToOne(t *testing.T) {
	for _, topology := range model.Topologies {
		for name, lookup := range map[string]func(model.Topology) ([]float64, error){
			"base":  BaseWeights,
			"heavy": HeavyPeakWeights,
		} {
			weights, err := lookup(topology)
			if err != nil {
				t.Fatalf("%s %s: unexpected error %v", name, topology, err)
			}
			var sum float64
			for _, w := range weights {
				sum += w
			}
			if math.Abs(sum-1) > 1e-9 {
				t.Errorf("%s weights for %s sum to %v", name, topology, sum)
			}
			n, _ := topology.DirectionCount()
			if len(weights) != n {
				t.Errorf("%s weights for %s have %d entries, expected %d", name, topology, len(weights), n)
			}
		}
	}
}

func TestBaseWeights_UnknownTopology(t *testing.T) {
	_, err := BaseWeights(model.Topology("Hexagon"))
	if !errors.Is(err, model.ErrUnsupportedTopology) {
		t.Errorf("expected ErrUnsupportedTopology, got %v", err)
	}
}

func TestBaseWeights_ReturnsCopy(t *testing.T) {
	w, _ := BaseWeights(model.FourWay)
	w[0] = 99
	again, _ := BaseWeights(model.FourWay)
	if again[0] != 0.4 {
		t.Errorf("weight table was mutated through returned slice: %v", again)
	}
}

func TestPlanner_Adjustments(t *testing.T) {
	p := NewPlanner()

	peak, err := p.Plan(model.FourWay, model.Regime{Period: model.PeriodPeak})
	if err != nil {
		t.Fatal(err)
	}
	if peak.CycleLength != 120 {
		t.Errorf("expected Four-Way peak cycle 120, got %d", peak.CycleLength)
	}
	assertWeights(t, "peak", peak.Weights, []float64{0.52, 0.39, 0.26, 0.13})

	nonPeak, _ := p.Plan(model.FourWay, model.Regime{Period: model.PeriodNonPeak})
	if nonPeak.CycleLength != 90 {
		t.Errorf("expected Four-Way non-peak cycle 90, got %d", nonPeak.CycleLength)
	}
	assertWeights(t, "non-peak", nonPeak.Weights, []float64{0.28, 0.21, 0.14, 0.1})

	night, _ := p.Plan(model.FourWay, model.Regime{Period: model.PeriodNight})
	assertWeights(t, "night", night.Weights, []float64{0.325, 0.275, 0.225, 0.175})

	heavy, _ := p.Plan(model.Diamond, model.Regime{Period: model.PeriodPeak, Heavy: true})
	assertWeights(t, "heavy peak", heavy.Weights, []float64{0.4, 0.4, 0.12, 0.08})
	if heavy.CycleLength != 160 {
		t.Errorf("expected Diamond heavy peak cycle 160, got %d", heavy.CycleLength)
	}
}

func TestPlanner_ShorterCyclesForRoundaboutAndTJunction(t *testing.T) {
	p := NewPlanner()
	for _, regime := range allRegimes {
		four, _ := p.Plan(model.FourWay, regime)
		diamond, _ := p.Plan(model.Diamond, regime)
		for _, short := range []model.Topology{model.Roundabout, model.TJunction} {
			plan, err := p.Plan(short, regime)
			if err != nil {
				t.Fatal(err)
			}
			if plan.CycleLength >= four.CycleLength || plan.CycleLength >= diamond.CycleLength {
				t.Errorf("%s cycle %d in %s is not shorter than Four-Way/Diamond (%d/%d)",
					short, plan.CycleLength, regime, four.CycleLength, diamond.CycleLength)
			}
		}
	}
}

func TestPlanner_UnknownTopology(t *testing.T) {
	_, err := NewPlanner().Plan(model.Topology("Star"), model.Regime{})
	if !errors.Is(err, model.ErrUnsupportedTopology) {
		t.Errorf("expected ErrUnsupportedTopology, got %v", err)
	}
}

func TestWeightedAllocator_Deterministic(t *testing.T) {
	bounds := Bounds{Clearance: 5, MinGreen: 10, MaxGreen: 60, MinRed: 60, MaxRed: 135}
	timing, err := NewWeightedAllocator().Allocate(model.FourWay, 120, []float64{0.4, 0.3, 0.2, 0.1}, bounds)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(timing.Green, []int{40, 30, 20, 10}) {
		t.Errorf("green = %v, expected [40 30 20 10]", timing.Green)
	}
	if !reflect.DeepEqual(timing.Red, []int{80, 90, 100, 110}) {
		t.Errorf("red = %v, expected [80 90 100 110]", timing.Red)
	}

	bounds.MinRed = 90
	clamped, _ := NewWeightedAllocator().Allocate(model.FourWay, 120, []float64{0.4, 0.3, 0.2, 0.1}, bounds)
	if clamped.Red[0] != 90 {
		t.Errorf("red[0] should be clamped to 90, got %d", clamped.Red[0])
	}
}

func TestWeightedAllocator_FitKeepsPriorityOrder(t *testing.T) {
	plan, err := NewPlanner().Plan(model.FourWay, model.Regime{Period: model.PeriodPeak})
	if err != nil {
		t.Fatal(err)
	}
	timing, err := NewWeightedAllocator().Allocate(model.FourWay, plan.CycleLength, plan.Weights, plan.Bounds)
	if err != nil {
		t.Fatal(err)
	}

	// усиленные веса дают 132с при бюджете 100с
	if sum := timing.Green[0] + timing.Green[1] + timing.Green[2] + timing.Green[3]; sum != 100 {
		t.Errorf("green %v should fill the budget exactly, sum %d", timing.Green, sum)
	}
	for i := 1; i < len(timing.Green); i++ {
		if timing.Green[i] > timing.Green[i-1] {
			t.Errorf("green %v lost the main-road priority", timing.Green)
		}
	}
}

func TestWeightedAllocator_SignalCountMismatch(t *testing.T) {
	_, err := NewWeightedAllocator().Allocate(model.FourWay, 120, []float64{0.4, 0.3, 0.3}, BoundsFor(model.FourWay, model.Regime{}))
	if !errors.Is(err, model.ErrSignalCountMismatch) {
		t.Fatalf("expected ErrSignalCountMismatch, got %v", err)
	}
	var mismatch *model.SignalCountMismatchError
	if !errors.As(err, &mismatch) || mismatch.Expected != 4 || mismatch.Got != 3 {
		t.Errorf("unexpected mismatch details: %+v", mismatch)
	}
}

func TestWeightedAllocator_CycleTooShort(t *testing.T) {
	_, err := NewWeightedAllocator().Allocate(model.FourWay, 20, []float64{0.25, 0.25, 0.25, 0.25}, Bounds{Clearance: 5})
	if err == nil {
		t.Error("expected error for cycle without green budget")
	}
}

func TestDeriveRed_Roundabout(t *testing.T) {
	red := DeriveRed([]int{20, 21, 80, 2}, Bounds{MinRed: 5, MaxRed: 30, HalfGreenRed: true})
	if !reflect.DeepEqual(red, []int{10, 11, 30, 5}) {
		t.Errorf("red = %v, expected [10 11 30 5]", red)
	}
}

func TestAllocators_StayWithinBounds(t *testing.T) {
	p := NewPlanner()
	allocators := map[string]Allocator{
		"weighted": NewWeightedAllocator(),
		"genetic":  NewGeneticAllocator(7),
	}

	for name, allocator := range allocators {
		for _, topology := range model.Topologies {
			for _, regime := range allRegimes {
				plan, err := p.Plan(topology, regime)
				if err != nil {
					t.Fatal(err)
				}
				n := len(plan.Weights)
				budget := plan.CycleLength - n*plan.Bounds.Clearance
				if n*plan.Bounds.MinGreen > budget {
					t.Fatalf("%s/%s: bounds infeasible, %d×%d > %d", topology, regime, n, plan.Bounds.MinGreen, budget)
				}

				timing, err := allocator.Allocate(topology, plan.CycleLength, plan.Weights, plan.Bounds)
				if err != nil {
					t.Fatalf("%s %s/%s: %v", name, topology, regime, err)
				}

				sum := 0
				for i, g := range timing.Green {
					sum += g
					if g < plan.Bounds.MinGreen || g > plan.Bounds.MaxGreen {
						t.Errorf("%s %s/%s: green[%d]=%d outside [%d,%d]", name, topology, regime, i, g, plan.Bounds.MinGreen, plan.Bounds.MaxGreen)
					}
					if r := timing.Red[i]; r < plan.Bounds.MinRed || r > plan.Bounds.MaxRed {
						t.Errorf("%s %s/%s: red[%d]=%d outside [%d,%d]", name, topology, regime, i, r, plan.Bounds.MinRed, plan.Bounds.MaxRed)
					}
				}
				if sum > budget {
					t.Errorf("%s %s/%s: green sum %d exceeds budget %d", name, topology, regime, sum, budget)
				}
			}
		}
	}
}

func TestGeneticAllocator_SeedDeterminism(t *testing.T) {
	plan, _ := NewPlanner().Plan(model.Diamond, model.Regime{Period: model.PeriodPeak})

	first, err := NewGeneticAllocator(42).Allocate(model.Diamond, plan.CycleLength, plan.Weights, plan.Bounds)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := NewGeneticAllocator(42).Allocate(model.Diamond, plan.CycleLength, plan.Weights, plan.Bounds)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different timings: %v vs %v", first, second)
	}

	_, err = NewGeneticAllocator(42).Allocate(model.TJunction, 100, plan.Weights, plan.Bounds)
	if !errors.Is(err, model.ErrSignalCountMismatch) {
		t.Errorf("expected ErrSignalCountMismatch, got %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input    string
		expected Strategy
		wantErr  bool
	}{
		{"", StrategyWeighted, false},
		{"Weighted", StrategyWeighted, false},
		{"genetic", StrategyGenetic, false},
		{"ga", StrategyGenetic, false},
		{"pso", "", true},
	}
	for _, tc := range tests {
		got, err := ParseStrategy(tc.input)
		if (err != nil) != tc.wantErr || got != tc.expected {
			t.Errorf("ParseStrategy(%q) = %q, %v", tc.input, got, err)
		}
	}
}

func assertWeights(t *testing.T, label string, got, expected []float64) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("%s: got %v, expected %v", label, got, expected)
	}
	for i := range got {
		if math.Abs(got[i]-expected[i]) > 1e-9 {
			t.Errorf("%s: weight[%d] = %v, expected %v", label, i, got[i], expected[i])
		}
	}
}
