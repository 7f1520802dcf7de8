package models

// VolumeRecord строка ряда интенсивности для обмена с сервисом прогноза
type VolumeRecord struct {
	Day                  string    `json:"day"`                              // День недели
	Hour                 int       `json:"hour"`                             // Час 0-23
	TotalVehicles        float64   `json:"total_vehicles"`                   // Всего машин за час
	PerDirectionVehicles []float64 `json:"per_direction_vehicles,omitempty"` // Машины по направлениям
}

// ForecastRequest запрос прогноза интенсивности
type ForecastRequest struct {
	Samples []VolumeRecord `json:"samples"`
}

// ForecastResponse ответ сервиса прогноза
type ForecastResponse struct {
	Status  string         `json:"status"`  // Статус выполнения (success/error)
	Message string         `json:"message"` // Сообщение о результате
	Samples []VolumeRecord `json:"samples"` // Прогнозный ряд
}

// LiveOptimizeRequest снимок текущей обстановки на перекрестке
type LiveOptimizeRequest struct {
	Color             string    `json:"color"`
	GreenTimes        []float64 `json:"green_times" binding:"omitempty,dive,gte=0"`
	RedTimes          []float64 `json:"red_times" binding:"omitempty,dive,gte=0"`
	IntersectionType  string    `json:"intersection_type"`
	CurrentHour       *int      `json:"current_hour" binding:"omitempty,gte=0,lte=23"`
	CurrentTravelTime float64   `json:"current_travel_time" binding:"gte=0"`
	CurrentDistance   string    `json:"current_distance"`
}

// LiveOptimizeResponse рекомендованный план для снимка
type LiveOptimizeResponse struct {
	OptimizedGreenTimes     []int   `json:"optimized_green_times"`
	OptimizedRedTimes       []int   `json:"optimized_red_times"`
	EstimatedDelayTime      float64 `json:"estimated_delay_time"`
	OptimizedTravelTime     float64 `json:"optimized_travel_time"`
	TimeSaved               float64 `json:"time_saved"`
	CycleLength             int     `json:"cycle_length"`
	TotalCycleTime          int     `json:"total_cycle_time"`
	Regime                  string  `json:"regime"`
	VehicleDensity          float64 `json:"vehicle_density"`
	EstimatedDelayReduction float64 `json:"estimated_delay_reduction"`
}

// TopologyInfo описание поддерживаемого типа перекрестка
type TopologyInfo struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Directions int    `json:"directions"`
}

// HealthResponse представляет ответ проверки здоровья сервиса
type HealthResponse struct {
	Status  string `json:"status"`            // Статус сервиса (healthy/unhealthy)
	Service string `json:"service,omitempty"` // Имя сервиса
	Version string `json:"version,omitempty"` // Версия сервиса
}
