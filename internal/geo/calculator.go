package geo

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"traffic-signal-optimizer-go/internal/model"
)

// Calculator для вычислений по расстоянию и времени в пути
type Calculator struct{}

// NewCalculator создает новый калькулятор
func NewCalculator() *Calculator {
	return &Calculator{}
}

// ParseDistanceKm разбирает строку вида "2.5 km", "800m", "1,2 KM" и
// возвращает расстояние в километрах
func (c *Calculator) ParseDistanceKm(value string) (float64, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return 0, fmt.Errorf("%w: empty distance", model.ErrMalformedDistance)
	}

	// Отделяем число от единицы измерения
	split := strings.IndexFunc(v, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != ','
	})
	if split <= 0 {
		return 0, fmt.Errorf("%w: %q has no unit", model.ErrMalformedDistance, value)
	}

	number := strings.ReplaceAll(v[:split], ",", ".")
	unit := strings.TrimSpace(v[split:])

	amount, err := strconv.ParseFloat(number, 64)
	if err != nil || amount <= 0 {
		return 0, fmt.Errorf("%w: %q", model.ErrMalformedDistance, value)
	}

	switch unit {
	case "km", "kms", "kilometers", "kilometres":
		return amount, nil
	case "m", "meters", "metres":
		return amount / 1000, nil
	}
	return 0, fmt.Errorf("%w: unknown unit %q", model.ErrMalformedDistance, unit)
}

// SpeedKmh средняя скорость по расстоянию и времени в пути в секундах
func (c *Calculator) SpeedKmh(distanceKm, travelSeconds float64) (float64, error) {
	if travelSeconds <= 0 {
		return 0, fmt.Errorf("travel time must be positive, got %.2f", travelSeconds)
	}
	return distanceKm / (travelSeconds / 3600), nil
}
