package timing

import (
	"fmt"
	"math"

	"traffic-signal-optimizer-go/internal/model"

	"github.com/samber/lo"
)

// Timing секунды зеленого и красного по направлениям
type Timing struct {
	Green []int `json:"green"`
	Red   []int `json:"red"`
}

// Allocator стратегия распределения цикла по направлениям
type Allocator interface {
	Allocate(topology model.Topology, cycleLength int, weights []float64, bounds Bounds) (Timing, error)
}

// WeightedAllocator распределение пропорционально весам (стратегия по умолчанию)
type WeightedAllocator struct{}

// NewWeightedAllocator создает распределитель по весам
func NewWeightedAllocator() *WeightedAllocator {
	return &WeightedAllocator{}
}

// Allocate считает зеленый как round(w×(цикл − n×переход)) с ограничением
// [MinGreen, MaxGreen], затем выводит красный из зеленых остальных направлений.
func (a *WeightedAllocator) Allocate(topology model.Topology, cycleLength int, weights []float64, bounds Bounds) (Timing, error) {
	n, err := CheckSignalCount(topology, "weights", len(weights))
	if err != nil {
		return Timing{}, err
	}
	budget, err := greenBudget(cycleLength, n, bounds)
	if err != nil {
		return Timing{}, err
	}

	green := lo.Map(weights, func(w float64, _ int) int {
		return lo.Clamp(roundInt(w*float64(budget)), bounds.MinGreen, bounds.MaxGreen)
	})
	fitToBudget(green, weights, budget, bounds.MinGreen)

	return Timing{Green: green, Red: DeriveRed(green, bounds)}, nil
}

// CheckSignalCount сверяет длину массива с числом направлений топологии
func CheckSignalCount(topology model.Topology, field string, got int) (int, error) {
	expected, err := topology.DirectionCount()
	if err != nil {
		return 0, err
	}
	if got != expected {
		return 0, &model.SignalCountMismatchError{
			Topology: topology,
			Field:    field,
			Expected: expected,
			Got:      got,
		}
	}
	return expected, nil
}

// DeriveRed: красный направления равен сумме зеленых остальных плюс
// n переходов; для кольца половина собственного зеленого. Результат
// ограничивается полосой [MinRed, MaxRed].
func DeriveRed(green []int, bounds Bounds) []int {
	n := len(green)
	total := lo.Sum(green)
	return lo.Map(green, func(g int, _ int) int {
		var red int
		if bounds.HalfGreenRed {
			red = roundInt(0.5 * float64(g))
		} else {
			red = total - g + n*bounds.Clearance
		}
		return lo.Clamp(red, bounds.MinRed, bounds.MaxRed)
	})
}

// TotalCycleTime фактический оборот: сумма зеленых плюс переходы
func TotalCycleTime(green []int, clearance int) int {
	return lo.Sum(green) + len(green)*clearance
}

func greenBudget(cycleLength, n int, bounds Bounds) (int, error) {
	budget := cycleLength - n*bounds.Clearance
	if budget <= 0 {
		return 0, fmt.Errorf("cycle length %ds leaves no green time after %d×%ds clearance",
			cycleLength, n, bounds.Clearance)
	}
	return budget, nil
}

// fitToBudget снимает по секунде с направления, у которого зеленого больше
// всего относительно веса, пока сумма не уложится в бюджет. Ниже minGreen
// не опускается.
func fitToBudget(green []int, weights []float64, budget, minGreen int) {
	for lo.Sum(green) > budget {
		idx := -1
		best := 0.0
		for i, g := range green {
			if g <= minGreen {
				continue
			}
			share := math.Inf(1)
			if weights[i] > 0 {
				share = float64(g) / weights[i]
			}
			if idx < 0 || share > best {
				idx, best = i, share
			}
		}
		if idx < 0 {
			return
		}
		green[idx]--
	}
}

// roundInt округление половины от нуля; применяется во всем движке
func roundInt(v float64) int {
	return int(math.Round(v))
}
