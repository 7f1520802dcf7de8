package model

// Period часть суток с точки зрения нагрузки
type Period int

const (
	// PeriodNonPeak обычное время; в live-модели называется "Regular"
	PeriodNonPeak Period = iota
	PeriodPeak
	PeriodNight
)

func (p Period) String() string {
	switch p {
	case PeriodPeak:
		return "peak"
	case PeriodNight:
		return "night"
	default:
		return "non-peak"
	}
}

// Regime режим нагрузки для конкретного часа
type Regime struct {
	Period Period
	Heavy  bool
}

func (r Regime) String() string {
	if r.Heavy {
		return "heavy-" + r.Period.String()
	}
	return r.Period.String()
}

// MarshalText нужен для вывода режима строкой в JSON
func (r Regime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
