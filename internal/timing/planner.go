package timing

import (
	"fmt"
	"math"

	"traffic-signal-optimizer-go/internal/model"

	"github.com/samber/lo"
)

// Коэффициенты корректировки весов по режиму
const (
	PeakBoost    = 1.3
	PeakCap      = 0.6
	NonPeakDamp  = 0.7
	NonPeakFloor = 0.1
	NightBlend   = 0.5
)

// Bounds ограничения распределителя для пары (топология, режим)
type Bounds struct {
	Clearance int `json:"clearance"`
	MinGreen  int `json:"min_green"`
	MaxGreen  int `json:"max_green"`
	MinRed    int `json:"min_red"`
	MaxRed    int `json:"max_red"`
	// HalfGreenRed красный считается как половина собственного зеленого (кольцо)
	HalfGreenRed bool `json:"half_green_red,omitempty"`
}

// Plan длина цикла и скорректированные веса для одного часа
type Plan struct {
	Regime      model.Regime `json:"regime"`
	CycleLength int          `json:"cycle_length"`
	Weights     []float64    `json:"weights"`
	Bounds      Bounds       `json:"bounds"`
}

type cycleKey struct {
	period model.Period
	heavy  bool
}

var cycleLengths = map[model.Topology]map[cycleKey]int{
	model.FourWay: {
		{model.PeriodPeak, false}: 120, {model.PeriodPeak, true}: 150,
		{model.PeriodNonPeak, false}: 90, {model.PeriodNonPeak, true}: 110,
		{model.PeriodNight, false}: 70, {model.PeriodNight, true}: 90,
	},
	model.Diamond: {
		{model.PeriodPeak, false}: 130, {model.PeriodPeak, true}: 160,
		{model.PeriodNonPeak, false}: 100, {model.PeriodNonPeak, true}: 120,
		{model.PeriodNight, false}: 75, {model.PeriodNight, true}: 95,
	},
	model.TJunction: {
		{model.PeriodPeak, false}: 110, {model.PeriodPeak, true}: 135,
		{model.PeriodNonPeak, false}: 85, {model.PeriodNonPeak, true}: 100,
		{model.PeriodNight, false}: 65, {model.PeriodNight, true}: 80,
	},
	model.Roundabout: {
		{model.PeriodPeak, false}: 100, {model.PeriodPeak, true}: 125,
		{model.PeriodNonPeak, false}: 80, {model.PeriodNonPeak, true}: 95,
		{model.PeriodNight, false}: 60, {model.PeriodNight, true}: 75,
	},
}

var clearances = map[model.Topology]int{
	model.FourWay:    5,
	model.Diamond:    5,
	model.TJunction:  4,
	model.Roundabout: 3,
}

var greenBounds = map[model.Period][2]int{
	model.PeriodPeak:    {15, 60},
	model.PeriodNonPeak: {12, 45},
	model.PeriodNight:   {10, 35},
}

var (
	regularRedBand    = [2]int{90, 135}
	heavyRedBand      = [2]int{75, 120}
	nightRedBand      = [2]int{60, 120}
	roundaboutRedBand = [2]int{5, 30}
)

// Planner выбирает длину цикла и веса по режиму нагрузки
type Planner struct{}

// NewPlanner создает планировщик
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan рассчитывает цикл, веса и ограничения для топологии и режима.
// Веса после ограничения не нормируются к 1.
func (p *Planner) Plan(topology model.Topology, regime model.Regime) (Plan, error) {
	base, err := BaseWeights(topology)
	if err != nil {
		return Plan{}, err
	}
	n := len(base)

	var weights []float64
	switch {
	case regime.Period == model.PeriodPeak && regime.Heavy:
		weights, err = HeavyPeakWeights(topology)
		if err != nil {
			return Plan{}, err
		}
	case regime.Period == model.PeriodPeak:
		weights = lo.Map(base, func(w float64, _ int) float64 { return math.Min(w*PeakBoost, PeakCap) })
	case regime.Period == model.PeriodNight:
		weights = lo.Map(base, func(w float64, _ int) float64 {
			return NightBlend*w + (1-NightBlend)/float64(n)
		})
	case regime.Heavy:
		weights = base
	default:
		weights = lo.Map(base, func(w float64, _ int) float64 { return math.Max(w*NonPeakDamp, NonPeakFloor) })
	}

	cycle, ok := cycleLengths[topology][cycleKey{regime.Period, regime.Heavy}]
	if !ok {
		return Plan{}, fmt.Errorf("no cycle length for %s in regime %s", topology, regime)
	}

	return Plan{
		Regime:      regime,
		CycleLength: cycle,
		Weights:     weights,
		Bounds:      BoundsFor(topology, regime),
	}, nil
}

// BoundsFor возвращает ограничения зеленого и красного для топологии и режима
func BoundsFor(topology model.Topology, regime model.Regime) Bounds {
	green := greenBounds[regime.Period]
	b := Bounds{
		Clearance: clearances[topology],
		MinGreen:  green[0],
		MaxGreen:  green[1],
	}

	red := regularRedBand
	switch {
	case topology == model.Roundabout:
		red = roundaboutRedBand
		b.HalfGreenRed = true
	case regime.Heavy:
		red = heavyRedBand
	case regime.Period == model.PeriodNight:
		red = nightRedBand
	}
	b.MinRed, b.MaxRed = red[0], red[1]
	return b
}
