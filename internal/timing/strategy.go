package timing

import (
	"fmt"
	"strings"
)

// Strategy имя стратегии распределения
type Strategy string

const (
	StrategyWeighted Strategy = "weighted"
	StrategyGenetic  Strategy = "genetic"
)

// ParseStrategy разбирает имя стратегии; пустое значение означает weighted
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case "", StrategyWeighted:
		return StrategyWeighted, nil
	case StrategyGenetic, "ga":
		return StrategyGenetic, nil
	}
	return "", fmt.Errorf("unknown allocator strategy %q", value)
}

// NewAllocator создает распределитель для стратегии
func NewAllocator(strategy Strategy, seed uint64) Allocator {
	if strategy == StrategyGenetic {
		return NewGeneticAllocator(seed)
	}
	return NewWeightedAllocator()
}
