package timing

import (
	"fmt"

	"traffic-signal-optimizer-go/internal/model"
)

// Базовые доли зеленого по направлениям. Таблицы неизменяемы,
// наружу отдаются только копии.
var baseWeights = map[model.Topology][]float64{
	model.FourWay:    {0.4, 0.3, 0.2, 0.1},
	model.TJunction:  {0.35, 0.4, 0.25},
	model.Roundabout: {0.25, 0.25, 0.25, 0.25},
	model.Diamond:    {0.35, 0.35, 0.2, 0.1},
}

// Наборы для тяжелого пика: заменяют базовые веса целиком, отдавая
// приоритет главной дороге.
var heavyPeakWeights = map[model.Topology][]float64{
	model.FourWay:    {0.45, 0.35, 0.12, 0.08},
	model.TJunction:  {0.35, 0.5, 0.15},
	model.Roundabout: {0.3, 0.3, 0.2, 0.2},
	model.Diamond:    {0.4, 0.4, 0.12, 0.08},
}

// BaseWeights возвращает базовый профиль весов для топологии
func BaseWeights(topology model.Topology) ([]float64, error) {
	return lookupWeights(baseWeights, topology)
}

// HeavyPeakWeights возвращает профиль весов для тяжелого пика
func HeavyPeakWeights(topology model.Topology) ([]float64, error) {
	return lookupWeights(heavyPeakWeights, topology)
}

func lookupWeights(table map[model.Topology][]float64, topology model.Topology) ([]float64, error) {
	weights, ok := table[topology]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedTopology, string(topology))
	}
	return append([]float64(nil), weights...), nil
}
