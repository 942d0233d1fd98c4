package agentresults

import (
	"fmt"
	"time"

	"PulseGateway/internal/domain/models"
)

// Demo returns the built-in analysis shown when no worker output is reachable.
func Demo(now time.Time) models.AgentResults {
	ts := now.UTC().Format(time.RFC3339)
	return models.AgentResults{
		Metadata: models.AgentMetadata{
			Timestamp:  ts,
			AnalysisID: fmt.Sprintf("DEMO_%d", now.UnixMilli()),
		},
		Predictions: models.AgentPredictions{
			SurgePrediction: models.SurgePrediction{
				BaselineInflow:           80,
				PredictedInflow:          187.2,
				PredictedSurgePercentage: 134.0,
				RiskLevel:                "high",
				Confidence:               0.85,
				PeakDate:                 now.Add(3 * 24 * time.Hour).UTC().Format(time.RFC3339),
			},
		},
		Alerts: []models.AgentAlert{
			{
				ID:        "ALERT_1",
				Type:      "patient_surge",
				Severity:  "high",
				Title:     "Patient Surge Alert: 134.0% Increase Expected",
				Message:   "Predicted patient surge of 134.0% in the next 7 days. Risk level: HIGH",
				Timestamp: ts,
				Metrics:   map[string]interface{}{"surge_percentage": 134.0, "risk_level": "high"},
			},
			{
				ID:        "ALERT_2",
				Type:      "pollution_risk",
				Severity:  "high",
				Title:     "High Pollution Risk Alert",
				Message:   "Pollution risk score: 75.0/100. Expect increase in respiratory cases",
				Timestamp: ts,
				Metrics:   map[string]interface{}{"risk_score": 75.0},
			},
		},
		Recommendations: []models.AgentRecommendation{
			{
				ID:          "REC_1",
				Category:    "staffing",
				Priority:    "high",
				Title:       "Increase Staff Allocation",
				Description: "Increase staff by approximately 40% to handle predicted surge",
				Actions: []string{
					"Schedule additional 40% nursing staff for next 7 days",
					"Arrange on-call doctors for emergency coverage",
				},
				Impact:   "high",
				Timeline: "immediate",
			},
			{
				ID:          "REC_2",
				Category:    "resources",
				Priority:    "high",
				Title:       "Stock Essential Medical Supplies",
				Description: "Increase inventory of essential medical supplies and equipment",
				Actions: []string{
					"Order additional PPE, masks, and sanitizers",
					"Stock up on common medications and IV fluids",
				},
				Impact:   "high",
				Timeline: "within 48 hours",
			},
		},
		Summary: models.AgentSummary{
			TotalAlerts:          2,
			CriticalAlerts:       0,
			HighAlerts:           2,
			TotalRecommendations: 2,
			OverallRiskLevel:     "high",
		},
	}
}
