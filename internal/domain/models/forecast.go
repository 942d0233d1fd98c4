package models

// DataSource tells the client whether a payload is live or a stand-in.
type DataSource string

const (
	DataSourceLive     DataSource = "live"
	DataSourceFallback DataSource = "fallback"
)

// ForecastPoint is one day of the admissions forecast in canonical form.
type ForecastPoint struct {
	Date           string  `json:"date"`
	Predicted      float64 `json:"predicted"`
	Baseline       float64 `json:"baseline"`
	ConfidenceLow  float64 `json:"confidence_low"`
	ConfidenceHigh float64 `json:"confidence_high"`
}

type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

type ForecastMetrics struct {
	MAE  float64 `json:"mae"`
	MAPE float64 `json:"mape"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

type ForecastSummary struct {
	AvgPredictedAdmissions float64  `json:"avg_predicted_admissions"`
	AvgBaselineAdmissions  float64  `json:"avg_baseline_admissions"`
	PeakDay                string   `json:"peak_day,omitempty"`
	PeakValue              float64  `json:"peak_value"`
	Explanation            string   `json:"explanation,omitempty"`
	Methodology            []string `json:"methodology,omitempty"`
	ModelSource            string   `json:"model_source,omitempty"`
}

// Forecast is the normalised result of POST /api/forecast.
type Forecast struct {
	Points            []ForecastPoint     `json:"forecast"`
	Summary           *ForecastSummary    `json:"summary,omitempty"`
	Metrics           *ForecastMetrics    `json:"metrics,omitempty"`
	FeatureImportance []FeatureImportance `json:"feature_importance,omitempty"`
}

// ForecastParams is the body sent to the forecasting backend.
type ForecastParams struct {
	HorizonDays int      `json:"horizon_days"`
	AQIOverride *float64 `json:"aqi_override,omitempty"`
	IsFestival  bool     `json:"is_festival"`
}
