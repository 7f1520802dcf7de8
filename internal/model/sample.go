package model

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// VolumeSample одна строка датасета интенсивности движения
type VolumeSample struct {
	Day                  Day       `json:"day"`
	Hour                 int       `json:"hour"`
	TotalVehicles        float64   `json:"total_vehicles"`
	PerDirectionVehicles []float64 `json:"per_direction_vehicles,omitempty"`
}

// Validate проверяет инварианты строки
func (s VolumeSample) Validate() error {
	if s.Day < Monday || s.Day > Sunday {
		return fmt.Errorf("%w: day %d out of range", ErrInvalidSample, int(s.Day))
	}
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("%w: hour %d out of range [0,23]", ErrInvalidSample, s.Hour)
	}
	if !isFinite(s.TotalVehicles) {
		return fmt.Errorf("%w: total vehicles %v is not a finite number", ErrInvalidSample, s.TotalVehicles)
	}
	if s.TotalVehicles < 0 {
		return fmt.Errorf("%w: negative total vehicles %.2f", ErrInvalidSample, s.TotalVehicles)
	}
	if len(s.PerDirectionVehicles) == 0 {
		return nil
	}
	if lo.SomeBy(s.PerDirectionVehicles, func(v float64) bool { return !isFinite(v) }) {
		return fmt.Errorf("%w: non-finite per-direction volume at %s %02d:00", ErrInvalidSample, s.Day, s.Hour)
	}
	if lo.SomeBy(s.PerDirectionVehicles, func(v float64) bool { return v < 0 }) {
		return fmt.Errorf("%w: negative per-direction volume at %s %02d:00", ErrInvalidSample, s.Day, s.Hour)
	}
	sum := lo.Sum(s.PerDirectionVehicles)
	if math.Abs(sum-s.TotalVehicles) > 0.01*s.TotalVehicles+0.5 {
		return fmt.Errorf("%w: per-direction sum %.2f differs from total %.2f", ErrInvalidSample, sum, s.TotalVehicles)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DirectionVolumes возвращает объемы по направлениям; при их отсутствии делит поровну
func (s VolumeSample) DirectionVolumes(n int) []float64 {
	if len(s.PerDirectionVehicles) == n {
		return append([]float64(nil), s.PerDirectionVehicles...)
	}
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	for i := range out {
		out[i] = s.TotalVehicles / float64(n)
	}
	return out
}
