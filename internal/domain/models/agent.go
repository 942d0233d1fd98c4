package models

import "time"

type AgentMetadata struct {
	Timestamp  string `json:"timestamp"`
	AnalysisID string `json:"analysis_id"`
}

type SurgePrediction struct {
	BaselineInflow           float64 `json:"baseline_inflow"`
	PredictedInflow          float64 `json:"predicted_inflow"`
	PredictedSurgePercentage float64 `json:"predicted_surge_percentage"`
	RiskLevel                string  `json:"risk_level"`
	Confidence               float64 `json:"confidence"`
	PeakDate                 string  `json:"peak_date"`
}

type AgentPredictions struct {
	SurgePrediction SurgePrediction `json:"surge_prediction"`
}

type AgentAlert struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Severity  string                 `json:"severity"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Timestamp string                 `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

type AgentRecommendation struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
	Impact      string   `json:"impact"`
	Timeline    string   `json:"timeline"`
}

type AgentSummary struct {
	TotalAlerts          int    `json:"total_alerts"`
	CriticalAlerts       int    `json:"critical_alerts"`
	HighAlerts           int    `json:"high_alerts"`
	TotalRecommendations int    `json:"total_recommendations"`
	OverallRiskLevel     string `json:"overall_risk_level"`
}

// AgentResults is the worker's pre-computed analysis document.
type AgentResults struct {
	Metadata        AgentMetadata         `json:"metadata"`
	Predictions     AgentPredictions      `json:"predictions"`
	Alerts          []AgentAlert          `json:"alerts"`
	Recommendations []AgentRecommendation `json:"recommendations"`
	Summary         AgentSummary          `json:"summary"`
}

// GeneratedAt parses the metadata timestamp; zero when absent or malformed.
func (r AgentResults) GeneratedAt() time.Time {
	t, err := time.Parse(time.RFC3339, r.Metadata.Timestamp)
	if err != nil {
		if t2, err2 := time.Parse("2006-01-02T15:04:05", r.Metadata.Timestamp); err2 == nil {
			return t2
		}
		return time.Time{}
	}
	return t
}

// AgentNotification is the desktop notification raised for the most severe alert.
type AgentNotification struct {
	AlertID string `json:"alert_id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

// AgentResultsView is the payload for the AI insights panel.
type AgentResultsView struct {
	Results      AgentResults       `json:"results"`
	Notification *AgentNotification `json:"notification,omitempty"`
	DataSource   DataSource         `json:"data_source"`
	Source       string             `json:"source"`
	FetchedAt    time.Time          `json:"fetched_at"`
}
