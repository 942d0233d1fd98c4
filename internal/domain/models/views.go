package models

import (
	"strconv"
	"time"
)

// DashboardRequest drives the operations dashboard. AQI is the simulation slider;
// when set it overrides live AQI for the forecast and the decision engine.
type DashboardRequest struct {
	HorizonDays int    `query:"horizon_days" default:"7" validate:"gte=1,lte=90"`
	AQI         string `query:"aqi" validate:"omitempty,numeric"`
	IsFestival  bool   `query:"is_festival"`
}

// SimulatedAQI is nil when the simulation slider is off.
func (r DashboardRequest) SimulatedAQI() *float64 { return optionalFloat(r.AQI) }

type DashboardView struct {
	Forecast        []ForecastPoint  `json:"forecast"`
	Summary         *ForecastSummary `json:"summary,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	ReasoningTrace  []string         `json:"reasoning_trace,omitempty"`
	RiskExplanation string           `json:"risk_explanation,omitempty"`
	KPI             KPI              `json:"kpi"`
	DataSource      DataSource       `json:"data_source"`
	Warnings        []string         `json:"warnings,omitempty"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

type AlertsView struct {
	AlertPartition
	KPI        KPI        `json:"kpi"`
	Headline   string     `json:"headline,omitempty"`
	Warnings   []string   `json:"warnings,omitempty"`
	DataSource DataSource `json:"data_source"`
}

type ForecastRequest struct {
	HorizonDays int    `query:"horizon_days" default:"7" validate:"gte=1,lte=90"`
	AQIOverride string `query:"aqi_override" validate:"omitempty,numeric"`
	IsFestival  bool   `query:"is_festival"`
}

// Params converts the request to the upstream body.
func (r ForecastRequest) Params() ForecastParams {
	return ForecastParams{HorizonDays: r.HorizonDays, AQIOverride: optionalFloat(r.AQIOverride), IsFestival: r.IsFestival}
}

type ForecastLabView struct {
	Forecast
	DataSource DataSource `json:"data_source"`
	Warnings   []string   `json:"warnings,omitempty"`
}

type ScenarioRequest struct {
	HorizonDays int    `query:"horizon_days" default:"7" validate:"gte=1,lte=90"`
	Scenarios   string `query:"scenarios"`
}

type AlertHistoryRequest struct {
	From     string `query:"from"`
	To       string `query:"to"`
	Severity string `query:"severity" validate:"omitempty,oneof=critical high medium low"`
	Limit    int    `query:"limit" default:"200" validate:"gte=1,lte=5000"`
}

type DocumentSearchRequest struct {
	HospitalID int    `query:"hospital_id"`
	Query      string `query:"query" validate:"required,max=500"`
}

func optionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
