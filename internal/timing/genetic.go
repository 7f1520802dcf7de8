package timing

import (
	"math/rand/v2"
	"slices"

	"traffic-signal-optimizer-go/internal/model"

	"github.com/samber/lo"
)

// GeneticAllocator ищет целочисленное распределение зеленого генетическим
// алгоритмом. Особи всегда лежат в [MinGreen, MaxGreen] и укладываются в
// бюджет цикла. При одинаковом Seed результат детерминирован.
type GeneticAllocator struct {
	Population   int
	Generations  int
	MutationRate float64
	Seed         uint64
}

// NewGeneticAllocator создает распределитель с параметрами по умолчанию
func NewGeneticAllocator(seed uint64) *GeneticAllocator {
	return &GeneticAllocator{
		Population:   40,
		Generations:  60,
		MutationRate: 0.2,
		Seed:         seed,
	}
}

type individual struct {
	green []int
	cost  float64
}

// Allocate реализует Allocator
func (a *GeneticAllocator) Allocate(topology model.Topology, cycleLength int, weights []float64, bounds Bounds) (Timing, error) {
	n, err := CheckSignalCount(topology, "weights", len(weights))
	if err != nil {
		return Timing{}, err
	}
	budget, err := greenBudget(cycleLength, n, bounds)
	if err != nil {
		return Timing{}, err
	}

	rng := rand.New(rand.NewPCG(a.Seed, a.Seed^0x9e3779b97f4a7c15))
	cost := func(green []int) float64 {
		var total float64
		for i, g := range green {
			gap := float64(cycleLength - g)
			total += weights[i] * gap * gap / float64(cycleLength)
		}
		return total
	}

	// затравка: решение распределителя по весам
	seedTiming, err := NewWeightedAllocator().Allocate(topology, cycleLength, weights, bounds)
	if err != nil {
		return Timing{}, err
	}

	size := max(a.Population, 2)
	population := make([]individual, 0, size)
	population = append(population, individual{green: seedTiming.Green, cost: cost(seedTiming.Green)})
	for len(population) < size {
		green := make([]int, n)
		for i := range green {
			green[i] = bounds.MinGreen + rng.IntN(bounds.MaxGreen-bounds.MinGreen+1)
		}
		fitToBudget(green, weights, budget, bounds.MinGreen)
		population = append(population, individual{green: green, cost: cost(green)})
	}

	tournament := func() individual {
		x, y := population[rng.IntN(len(population))], population[rng.IntN(len(population))]
		if x.cost <= y.cost {
			return x
		}
		return y
	}

	for gen := 0; gen < a.Generations; gen++ {
		best := lo.MinBy(population, func(x, y individual) bool { return x.cost < y.cost })
		next := make([]individual, 0, size)
		next = append(next, best)

		for len(next) < size {
			p1, p2 := tournament(), tournament()
			child := make([]int, n)
			for i := range child {
				if rng.IntN(2) == 0 {
					child[i] = p1.green[i]
				} else {
					child[i] = p2.green[i]
				}
				if rng.Float64() < a.MutationRate {
					child[i] += rng.IntN(7) - 3
				}
				child[i] = lo.Clamp(child[i], bounds.MinGreen, bounds.MaxGreen)
			}
			fitToBudget(child, weights, budget, bounds.MinGreen)
			next = append(next, individual{green: child, cost: cost(child)})
		}
		population = next
	}

	best := lo.MinBy(population, func(x, y individual) bool { return x.cost < y.cost })
	green := slices.Clone(best.green)
	return Timing{Green: green, Red: DeriveRed(green, bounds)}, nil
}
