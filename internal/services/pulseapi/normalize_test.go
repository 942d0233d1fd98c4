package pulseapi

import (
	"testing"

	"PulseGateway/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeForecastAlternateNaming(t *testing.T) {
	f, err := DecodeForecast([]byte(`{
		"forecasts": [
			{"ds": "2025-01-07", "yhat": 120.5, "y": 100, "yhat_lower": 110, "yhat_upper": 131},
			{"date": "2025-01-08", "predicted": 140, "yhat": 1, "baseline": 0, "y": 101}
		],
		"summary": "Forecast generated for 2 days."
	}`))
	require.NoError(t, err)
	require.Len(t, f.Points, 2)

	assert.Equal(t, models.ForecastPoint{Date: "2025-01-07", Predicted: 120.5, Baseline: 100, ConfidenceLow: 110, ConfidenceHigh: 131}, f.Points[0])
	assert.Equal(t, 140.0, f.Points[1].Predicted, "canonical wins when non-zero")
	assert.Equal(t, 101.0, f.Points[1].Baseline, "alternate used when canonical is zero")
	assert.Equal(t, 0.0, f.Points[1].ConfidenceLow, "missing numbers become 0")

	require.NotNil(t, f.Summary)
	assert.Equal(t, "Forecast generated for 2 days.", f.Summary.Explanation)
	assert.Equal(t, 140.0, f.Summary.PeakValue)
	assert.Equal(t, "2025-01-08", f.Summary.PeakDay)
}

func TestDecodeForecastPredictionsAndObjectSummary(t *testing.T) {
	f, err := DecodeForecast([]byte(`{
		"predictions": [{"date": "2025-01-07", "predicted": "90"}],
		"summary": {"avg_predicted_admissions": 91, "peak_day": "2025-01-07", "peak_value": 95, "methodology": ["prophet"]},
		"metrics": {"mae": 3.1, "r2": 0.8},
		"feature_importance": [{"feature": "aqi", "importance": 0.4}]
	}`))
	require.NoError(t, err)
	require.Len(t, f.Points, 1)
	assert.Equal(t, 90.0, f.Points[0].Predicted)
	assert.Equal(t, 95.0, f.Summary.PeakValue)
	assert.Equal(t, []string{"prophet"}, f.Summary.Methodology)
	assert.InDelta(t, 0.8, f.Metrics.R2, 1e-9)
	assert.Len(t, f.FeatureImportance, 1)
}

func TestDecodeForecastEmpty(t *testing.T) {
	f, err := DecodeForecast([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, f.Points)
	assert.Nil(t, f.Summary)

	_, err = DecodeForecast([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecodeDecision(t *testing.T) {
	d, err := DecodeDecision([]byte(`{
		"risk_level": "HIGH",
		"operational_risk_score": 82,
		"actions": {
			"staffing": [{"action": "Call in 5 nurses", "details": "ER surge", "priority": "High"}],
			"supplies": [{"action": "", "priority": "Low"}],
			"advisory": [{"action": "Issue mask advisory", "priority": "medium"}],
			"marketing": [{"action": "ignored"}]
		},
		"reasoning_trace": ["AQI is 310"]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 82.0, d.RiskScore)

	flat := d.Flatten()
	require.Len(t, flat, 2)
	assert.Equal(t, models.ActionStaffing, flat[0].Category)
	assert.Equal(t, models.PriorityHigh, flat[0].Priority)
	assert.Equal(t, models.ActionAdvisory, flat[1].Category)
	assert.Equal(t, models.PriorityMedium, flat[1].Priority)
}

func TestDecodeInventoryShapes(t *testing.T) {
	items, err := DecodeInventory([]byte(`[{"item_id": 7, "item_name": "N95", "current_stock": "40", "minimum_stock": 100}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "7", items[0].ItemID)
	assert.True(t, items[0].LowStock())

	items, err = DecodeInventory([]byte(`{"items": [{"item_name": "Saline"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Saline", items[0].ItemName)

	_, err = DecodeInventory([]byte(`{"rows": []}`))
	assert.Error(t, err)
}

func TestDecodeScenarios(t *testing.T) {
	set, err := DecodeScenarios([]byte(`{
		"baseline": [{"ds": "2025-03-07", "yhat": 100}, {"ds": "2025-03-08", "yhat": 104}],
		"high_aqi": [{"ds": "2025-03-07", "yhat": 130}],
		"baseline_stats": {"average": 102, "peak": 104},
		"high_aqi_stats": {"average": 130, "peak": 130}
	}`))
	require.NoError(t, err)
	assert.Len(t, set.Series[models.ScenarioBaseline], 2)
	assert.Len(t, set.Series[models.ScenarioHighAQI], 1)
	assert.Empty(t, set.Series[models.ScenarioFestival])
	assert.Equal(t, 104.0, set.Stats[models.ScenarioBaseline].Peak)
	assert.Nil(t, set.Stats[models.ScenarioCombined])
}

func TestDecodeScenariosMissingPrediction(t *testing.T) {
	set, err := DecodeScenarios([]byte(`{
		"baseline": [{"ds": "2025-03-07"}, {"ds": "2025-03-08", "yhat": null}, {"predicted": 0}, {"predicted": 0, "yhat": 7}]
	}`))
	require.NoError(t, err)
	pts := set.Series[models.ScenarioBaseline]
	require.Len(t, pts, 4)
	assert.True(t, pts[0].Missing)
	assert.Equal(t, "2025-03-07", pts[0].Date)
	assert.True(t, pts[1].Missing)
	assert.False(t, pts[2].Missing)
	assert.Equal(t, 0.0, pts[2].Predicted)
	assert.Equal(t, 7.0, pts[3].Predicted)
}
