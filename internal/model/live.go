package model

// LiveSnapshot текущее состояние перекрестка для разовой оптимизации
type LiveSnapshot struct {
	Color             string
	GreenTimes        []float64
	RedTimes          []float64
	Topology          Topology
	CurrentHour       int
	CurrentTravelTime float64 // секунды
	CurrentDistance   string  // например "2.5 km" или "800 m"
}

// LiveResult результат разовой оптимизации
type LiveResult struct {
	OptimizedGreenTimes     []int   `json:"optimized_green_times"`
	OptimizedRedTimes       []int   `json:"optimized_red_times"`
	EstimatedDelayTime      float64 `json:"estimated_delay_time"`
	EstimatedDelayReduction float64 `json:"estimated_delay_reduction"`
	OptimizedTravelTime     float64 `json:"optimized_travel_time"`
	TimeSaved               float64 `json:"time_saved"`
	CycleLength             int     `json:"cycle_length"`
	TotalCycleTime          int     `json:"total_cycle_time"`
	Regime                  Regime  `json:"regime"`
	VehicleDensity          float64 `json:"vehicle_density"`
}
