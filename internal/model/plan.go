package model

// TimingPlan рассчитанный план сигналов для одного часа.
// CycleLength является входом планирования, TotalCycleTime фактически
// получившийся оборот (сумма зеленых плюс переходы); они могут расходиться.
type TimingPlan struct {
	Day            Day    `json:"day"`
	Hour           int    `json:"hour"`
	Regime         Regime `json:"regime"`
	CycleLength    int    `json:"cycle_length"`
	Clearance      int    `json:"clearance"`
	Green          []int  `json:"green"`
	Red            []int  `json:"red"`
	TotalCycleTime int    `json:"total_cycle_time"`
}

// MetricsEstimate оценки очереди, задержки и (в live-режиме) времени в пути
type MetricsEstimate struct {
	AvgQueueLength          float64 `json:"avg_queue_length"`
	AvgDelayTime            float64 `json:"avg_delay_time"`
	EstimatedDelayReduction float64 `json:"estimated_delay_reduction,omitempty"`
	TimeSaved               float64 `json:"time_saved,omitempty"`
	OptimizedTravelTime     float64 `json:"optimized_travel_time,omitempty"`
}

// PlanRow строка выходной таблицы пакетного режима
type PlanRow struct {
	TimingPlan
	Metrics           MetricsEstimate `json:"metrics"`
	TotalVehicles     float64         `json:"total_vehicles"`
	DirectionVehicles []float64       `json:"direction_vehicles"`
}

// NightAdvisory рекомендация по ночному циклу для всего датасета
type NightAdvisory string

const (
	NightAdvisoryUnknown  NightAdvisory = "unknown"
	NightAdvisoryLow      NightAdvisory = "low"
	NightAdvisoryModerate NightAdvisory = "moderate"
	NightAdvisorySimilar  NightAdvisory = "similar"
)

// Message человекочитаемый текст рекомендации
func (a NightAdvisory) Message() string {
	switch a {
	case NightAdvisoryLow:
		return "Low nighttime traffic detected. Reducing cycle length to 60s."
	case NightAdvisoryModerate:
		return "Moderate nighttime traffic detected. Adjusting cycle length to 80-100s."
	case NightAdvisorySimilar:
		return "Nighttime traffic is similar to daytime. Keeping normal cycle length."
	default:
		return "Not enough day and night data for a nighttime recommendation."
	}
}

// BatchResult результат пакетной оптимизации
type BatchResult struct {
	Topology      Topology      `json:"topology"`
	Rows          []PlanRow     `json:"rows"`
	NightAdvisory NightAdvisory `json:"night_advisory"`
}
