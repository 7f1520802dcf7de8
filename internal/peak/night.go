package peak

import (
	"traffic-signal-optimizer-go/internal/model"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// NightAdvisory сравнивает средний ночной поток (22–5) с дневным (6–21)
func NightAdvisory(samples []model.VolumeSample) model.NightAdvisory {
	night, day := lo.FilterReject(samples, func(s model.VolumeSample, _ int) bool {
		return IsNightHour(s.Hour)
	})
	if len(night) == 0 || len(day) == 0 {
		return model.NightAdvisoryUnknown
	}

	totals := func(s model.VolumeSample, _ int) float64 { return s.TotalVehicles }
	nightAvg := stat.Mean(lo.Map(night, totals), nil)
	dayAvg := stat.Mean(lo.Map(day, totals), nil)

	switch {
	case nightAvg < 0.3*dayAvg:
		return model.NightAdvisoryLow
	case nightAvg < 0.7*dayAvg:
		return model.NightAdvisoryModerate
	default:
		return model.NightAdvisorySimilar
	}
}
