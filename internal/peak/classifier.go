package peak

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"traffic-signal-optimizer-go/internal/model"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Mode алгоритм определения часов пик
type Mode string

const (
	// ModeStatistical порог по 75-му процентилю средних за час
	ModeStatistical Mode = "statistical"
	// ModeFixedSchedule фиксированное расписание часов пик и ночи
	ModeFixedSchedule Mode = "fixed"
)

// PeakPercentile процентиль, выше которого час считается пиковым
const PeakPercentile = 75.0

var scheduledPeakHours = []int{8, 9, 10, 11, 18, 19, 20, 21}

// ParseMode разбирает название режима классификатора
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "statistical", "percentile":
		return ModeStatistical, nil
	case "fixed", "schedule", "fixed-schedule":
		return ModeFixedSchedule, nil
	}
	return "", fmt.Errorf("unknown classifier mode %q", value)
}

// Classification разбиение часов на пиковые и непиковые.
// Ночные часы входят в NonPeakHours и дополнительно помечены в NightHours.
type Classification struct {
	Threshold    float64 `json:"threshold"`
	PeakHours    []int   `json:"peak_hours"`
	NonPeakHours []int   `json:"non_peak_hours"`
	NightHours   []int   `json:"night_hours,omitempty"`
}

// IsPeak сообщает, является ли час пиковым
func (c Classification) IsPeak(hour int) bool {
	return lo.Contains(c.PeakHours, hour)
}

// Regime возвращает режим нагрузки для часа
func (c Classification) Regime(hour int) model.Regime {
	switch {
	case c.IsPeak(hour):
		return model.Regime{Period: model.PeriodPeak}
	case lo.Contains(c.NightHours, hour):
		return model.Regime{Period: model.PeriodNight}
	default:
		return model.Regime{Period: model.PeriodNonPeak}
	}
}

// Classifier определяет часы пик по ряду средних объемов
type Classifier struct {
	mode   Mode
	logger *logrus.Logger
}

// NewClassifier создает классификатор
func NewClassifier(mode Mode, logger *logrus.Logger) *Classifier {
	if mode == "" {
		mode = ModeStatistical
	}
	return &Classifier{mode: mode, logger: logger}
}

// Mode возвращает выбранный алгоритм
func (c *Classifier) Mode() Mode {
	return c.mode
}

// Classify размечает часы ряда hour -> средний объем
func (c *Classifier) Classify(series map[int]float64) Classification {
	hours := lo.Keys(series)
	sort.Ints(hours)

	result := Classification{
		PeakHours:    []int{},
		NonPeakHours: []int{},
	}

	if c.mode == ModeFixedSchedule {
		for _, hour := range hours {
			if lo.Contains(scheduledPeakHours, hour) {
				result.PeakHours = append(result.PeakHours, hour)
				continue
			}
			result.NonPeakHours = append(result.NonPeakHours, hour)
			if IsNightHour(hour) {
				result.NightHours = append(result.NightHours, hour)
			}
		}
		return result
	}

	if len(hours) == 0 {
		return result
	}

	values := lo.Map(hours, func(hour int, _ int) float64 { return series[hour] })
	result.Threshold = Percentile(values, PeakPercentile)
	for _, hour := range hours {
		if series[hour] > result.Threshold {
			result.PeakHours = append(result.PeakHours, hour)
		} else {
			result.NonPeakHours = append(result.NonPeakHours, hour)
		}
	}
	return result
}

// ClassifyByDay классифицирует каждый день отдельно. Если дни не указаны,
// берутся все дни, присутствующие в данных. Дни без строк пропускаются.
func (c *Classifier) ClassifyByDay(samples []model.VolumeSample, days ...model.Day) map[model.Day]Classification {
	means := HourlyMeans(samples)
	if len(days) == 0 {
		days = lo.Filter(model.Days, func(d model.Day, _ int) bool {
			_, ok := means[d]
			return ok
		})
	}

	result := make(map[model.Day]Classification, len(days))
	for _, day := range days {
		series, ok := means[day]
		if !ok || len(series) == 0 {
			c.logger.Debugf("Нет данных за %s, день пропущен", day)
			continue
		}
		result[day] = c.Classify(series)
	}
	return result
}

// HourlyMeans группирует строки по дню и часу и считает средний объем
func HourlyMeans(samples []model.VolumeSample) map[model.Day]map[int]float64 {
	grouped := make(map[model.Day]map[int][]float64)
	for _, s := range samples {
		if grouped[s.Day] == nil {
			grouped[s.Day] = make(map[int][]float64)
		}
		grouped[s.Day][s.Hour] = append(grouped[s.Day][s.Hour], s.TotalVehicles)
	}

	means := make(map[model.Day]map[int]float64, len(grouped))
	for day, hours := range grouped {
		means[day] = make(map[int]float64, len(hours))
		for hour, values := range hours {
			means[day][hour] = stat.Mean(values, nil)
		}
	}
	return means
}

// Percentile считает процентиль с линейной интерполяцией между порядковыми
// статистиками. Для одного значения возвращает само значение.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	return sorted[lower] + (sorted[upper]-sorted[lower])*(rank-float64(lower))
}

// IsNightHour ночь: с 22:00 до 05:59
func IsNightHour(hour int) bool {
	return hour >= 22 || hour <= 5
}

// ScheduledPeriod часть суток по фиксированному расписанию (используется в live-режиме)
func ScheduledPeriod(hour int) model.Period {
	switch {
	case lo.Contains(scheduledPeakHours, hour):
		return model.PeriodPeak
	case IsNightHour(hour):
		return model.PeriodNight
	default:
		return model.PeriodNonPeak
	}
}
