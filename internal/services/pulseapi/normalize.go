package pulseapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"PulseGateway/internal/domain/models"
)

// number accepts JSON numbers, numeric strings and null.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("number %q: %w", s, err)
		}
		*n = number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

// text accepts JSON strings, numbers and null.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	*t = text(b)
	return nil
}

func pick(canonical, alternate number) float64 {
	if canonical != 0 {
		return float64(canonical)
	}
	return float64(alternate)
}

type rawPoint struct {
	Date           text   `json:"date"`
	DS             text   `json:"ds"`
	Predicted      number `json:"predicted"`
	Yhat           number `json:"yhat"`
	Baseline       number `json:"baseline"`
	Y              number `json:"y"`
	ConfidenceLow  number `json:"confidence_low"`
	YhatLower      number `json:"yhat_lower"`
	ConfidenceHigh number `json:"confidence_high"`
	YhatUpper      number `json:"yhat_upper"`
}

func (p rawPoint) canonical() models.ForecastPoint {
	date := string(p.Date)
	if date == "" {
		date = string(p.DS)
	}
	return models.ForecastPoint{
		Date:           date,
		Predicted:      pick(p.Predicted, p.Yhat),
		Baseline:       pick(p.Baseline, p.Y),
		ConfidenceLow:  pick(p.ConfidenceLow, p.YhatLower),
		ConfidenceHigh: pick(p.ConfidenceHigh, p.YhatUpper),
	}
}

// rawScenarioPoint keeps null and absent predictions apart from zero.
type rawScenarioPoint struct {
	Date      text    `json:"date"`
	DS        text    `json:"ds"`
	Predicted *number `json:"predicted"`
	Yhat      *number `json:"yhat"`
}

func (p rawScenarioPoint) canonical() models.ScenarioPoint {
	out := models.ScenarioPoint{Date: string(p.Date)}
	if out.Date == "" {
		out.Date = string(p.DS)
	}
	switch {
	case p.Predicted != nil && *p.Predicted != 0:
		out.Predicted = float64(*p.Predicted)
	case p.Yhat != nil:
		out.Predicted = float64(*p.Yhat)
	case p.Predicted != nil:
	default:
		out.Missing = true
	}
	return out
}

func normalizePoints(raw []rawPoint) []models.ForecastPoint {
	out := make([]models.ForecastPoint, 0, len(raw))
	for _, p := range raw {
		out = append(out, p.canonical())
	}
	return out
}

type rawForecast struct {
	Forecasts         []rawPoint                 `json:"forecasts"`
	Predictions       []rawPoint                 `json:"predictions"`
	Forecast          []rawPoint                 `json:"forecast"`
	Summary           json.RawMessage            `json:"summary"`
	Metrics           *models.ForecastMetrics    `json:"metrics"`
	FeatureImportance []models.FeatureImportance `json:"feature_importance"`
}

// DecodeForecast normalises either response shape of the forecasting endpoint.
// The summary may be a sentence or an object; a missing summary is derived from the points.
func DecodeForecast(b []byte) (*models.Forecast, error) {
	var raw rawForecast
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	points := raw.Forecasts
	if len(points) == 0 {
		points = raw.Predictions
	}
	if len(points) == 0 {
		points = raw.Forecast
	}

	f := &models.Forecast{
		Points:            normalizePoints(points),
		Metrics:           raw.Metrics,
		FeatureImportance: raw.FeatureImportance,
	}

	summary, err := decodeSummary(raw.Summary)
	if err != nil {
		return nil, err
	}
	derived := Summarize(f.Points)
	switch {
	case summary == nil:
		f.Summary = derived
	case summary.PeakValue == 0 && summary.AvgPredictedAdmissions == 0 && derived != nil:
		derived.Explanation = summary.Explanation
		derived.Methodology = summary.Methodology
		derived.ModelSource = summary.ModelSource
		f.Summary = derived
	default:
		f.Summary = summary
	}
	return f, nil
}

func decodeSummary(b json.RawMessage) (*models.ForecastSummary, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
		return &models.ForecastSummary{Explanation: s}, nil
	}
	var raw struct {
		AvgPredicted number   `json:"avg_predicted_admissions"`
		AvgBaseline  number   `json:"avg_baseline_admissions"`
		PeakDay      text     `json:"peak_day"`
		PeakValue    number   `json:"peak_value"`
		Explanation  string   `json:"explanation"`
		Methodology  []string `json:"methodology"`
		ModelSource  string   `json:"model_source"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &models.ForecastSummary{
		AvgPredictedAdmissions: float64(raw.AvgPredicted),
		AvgBaselineAdmissions:  float64(raw.AvgBaseline),
		PeakDay:                string(raw.PeakDay),
		PeakValue:              float64(raw.PeakValue),
		Explanation:            raw.Explanation,
		Methodology:            raw.Methodology,
		ModelSource:            raw.ModelSource,
	}, nil
}

// Summarize computes averages and the peak of points; nil when empty.
func Summarize(points []models.ForecastPoint) *models.ForecastSummary {
	if len(points) == 0 {
		return nil
	}
	var sumPred, sumBase float64
	peak := points[0]
	for _, p := range points {
		sumPred += p.Predicted
		sumBase += p.Baseline
		if p.Predicted > peak.Predicted {
			peak = p
		}
	}
	n := float64(len(points))
	return &models.ForecastSummary{
		AvgPredictedAdmissions: sumPred / n,
		AvgBaselineAdmissions:  sumBase / n,
		PeakDay:                peak.Date,
		PeakValue:              peak.Predicted,
	}
}

type rawAction struct {
	Action   text `json:"action"`
	Details  text `json:"details"`
	Priority text `json:"priority"`
}

type rawDecision struct {
	RiskLevel        text                   `json:"risk_level"`
	RiskScore        number                 `json:"operational_risk_score"`
	ScoreExplanation text                   `json:"score_explanation"`
	Actions          map[string][]rawAction `json:"actions"`
	ReasoningTrace   []string               `json:"reasoning_trace"`
}

// DecodeDecision normalises the decision-engine payload. Unknown action buckets are dropped.
func DecodeDecision(b []byte) (*models.Decision, error) {
	var raw rawDecision
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode decision: %w", err)
	}
	d := &models.Decision{
		RiskLevel:        string(raw.RiskLevel),
		RiskScore:        float64(raw.RiskScore),
		ScoreExplanation: string(raw.ScoreExplanation),
		Actions:          make(map[models.ActionCategory][]models.ActionItem, len(models.ActionCategories)),
		ReasoningTrace:   raw.ReasoningTrace,
	}
	for _, cat := range models.ActionCategories {
		for _, a := range raw.Actions[string(cat)] {
			if a.Action == "" {
				continue
			}
			d.Actions[cat] = append(d.Actions[cat], models.ActionItem{
				Action:   string(a.Action),
				Details:  string(a.Details),
				Priority: models.ParsePriority(string(a.Priority)),
				Category: cat,
			})
		}
	}
	return d, nil
}

// DecodeKPI normalises the KPI snapshot.
func DecodeKPI(b []byte) (*models.KPI, error) {
	var raw struct {
		Occupancy     number `json:"occupancy"`
		Admissions24h number `json:"admissions_24h"`
		AQI           number `json:"aqi"`
		RiskScore     number `json:"risk_score"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode kpi: %w", err)
	}
	return &models.KPI{
		Occupancy:     float64(raw.Occupancy),
		Admissions24h: float64(raw.Admissions24h),
		AQI:           float64(raw.AQI),
		RiskScore:     float64(raw.RiskScore),
	}, nil
}

// DecodeInventory accepts a bare array or an {"items": [...]} wrapper.
func DecodeInventory(b []byte) ([]models.InventoryItem, error) {
	type rawItem struct {
		ItemID       text   `json:"item_id"`
		ItemName     text   `json:"item_name"`
		Category     text   `json:"category"`
		CurrentStock number `json:"current_stock"`
		MinimumStock number `json:"minimum_stock"`
		Unit         text   `json:"unit"`
		UnitPrice    number `json:"unit_price"`
	}
	var raw []rawItem
	if err := decodeList(b, "items", &raw); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	out := make([]models.InventoryItem, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.InventoryItem{
			ItemID:       string(r.ItemID),
			ItemName:     string(r.ItemName),
			Category:     string(r.Category),
			CurrentStock: float64(r.CurrentStock),
			MinimumStock: float64(r.MinimumStock),
			Unit:         string(r.Unit),
			UnitPrice:    float64(r.UnitPrice),
		})
	}
	return out, nil
}

func DecodeStaffing(b []byte) ([]models.StaffMember, error) {
	type rawStaff struct {
		Name       text   `json:"name"`
		Role       text   `json:"role"`
		Department text   `json:"department"`
		Shift      text   `json:"shift"`
		DaysOfWeek text   `json:"days_of_week"`
		HourlyRate number `json:"hourly_rate"`
		Status     text   `json:"status"`
	}
	var raw []rawStaff
	if err := decodeList(b, "staff", &raw); err != nil {
		return nil, fmt.Errorf("decode staffing: %w", err)
	}
	out := make([]models.StaffMember, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.StaffMember{
			Name:       string(r.Name),
			Role:       string(r.Role),
			Department: string(r.Department),
			Shift:      string(r.Shift),
			DaysOfWeek: string(r.DaysOfWeek),
			HourlyRate: float64(r.HourlyRate),
			Status:     string(r.Status),
		})
	}
	return out, nil
}

func DecodeDepartments(b []byte) ([]models.DepartmentInfo, error) {
	type rawDept struct {
		DepartmentName   text   `json:"department_name"`
		TotalBeds        number `json:"total_beds"`
		ICUBeds          number `json:"icu_beds"`
		HeadOfDepartment text   `json:"head_of_department"`
		Floor            text   `json:"floor"`
		Contact          text   `json:"contact"`
	}
	var raw []rawDept
	if err := decodeList(b, "departments", &raw); err != nil {
		return nil, fmt.Errorf("decode departments: %w", err)
	}
	out := make([]models.DepartmentInfo, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.DepartmentInfo{
			DepartmentName:   string(r.DepartmentName),
			TotalBeds:        int(r.TotalBeds),
			ICUBeds:          int(r.ICUBeds),
			HeadOfDepartment: string(r.HeadOfDepartment),
			Floor:            string(r.Floor),
			Contact:          string(r.Contact),
		})
	}
	return out, nil
}

// DecodeScenarios reads the {baseline: [...], baseline_stats: {...}, ...} map.
// Series points use the same tolerant naming as forecasts.
func DecodeScenarios(b []byte) (*models.ScenarioSet, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}
	set := &models.ScenarioSet{
		Series: make(map[models.ScenarioKey][]models.ScenarioPoint, len(models.ScenarioOrder)),
		Stats:  make(map[models.ScenarioKey]*models.ScenarioStats),
	}
	for _, key := range models.ScenarioOrder {
		if series, ok := raw[string(key)]; ok {
			var pts []rawScenarioPoint
			if err := json.Unmarshal(series, &pts); err != nil {
				return nil, fmt.Errorf("decode scenario %s: %w", key, err)
			}
			out := make([]models.ScenarioPoint, 0, len(pts))
			for _, p := range pts {
				out = append(out, p.canonical())
			}
			set.Series[key] = out
		}
		if stats, ok := raw[string(key)+"_stats"]; ok {
			var s struct {
				Average number `json:"average"`
				Peak    number `json:"peak"`
			}
			if err := json.Unmarshal(stats, &s); err == nil {
				set.Stats[key] = &models.ScenarioStats{Average: float64(s.Average), Peak: float64(s.Peak)}
			}
		}
	}
	return set, nil
}

func decodeList(b []byte, wrapper string, dest interface{}) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var w map[string]json.RawMessage
		if err := json.Unmarshal(b, &w); err != nil {
			return err
		}
		inner, ok := w[wrapper]
		if !ok {
			return fmt.Errorf("missing %q list", wrapper)
		}
		b = inner
	}
	return json.Unmarshal(b, dest)
}
