package models

type KPI struct {
	Occupancy     float64 `json:"occupancy"`
	Admissions24h float64 `json:"admissions_24h"`
	AQI           float64 `json:"aqi"`
	RiskScore     float64 `json:"risk_score"`
}

// DefaultKPI is the last-known snapshot shown while the KPI endpoint is down.
func DefaultKPI() KPI {
	return KPI{Occupancy: 87, Admissions24h: 42, AQI: 97, RiskScore: 65}
}
