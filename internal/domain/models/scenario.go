package models

type ScenarioKey string

const (
	ScenarioBaseline ScenarioKey = "baseline"
	ScenarioHighAQI  ScenarioKey = "high_aqi"
	ScenarioFestival ScenarioKey = "festival"
	ScenarioCombined ScenarioKey = "combined"
)

// ScenarioOrder is the fixed order used for row labels and columns.
var ScenarioOrder = []ScenarioKey{ScenarioBaseline, ScenarioHighAQI, ScenarioFestival, ScenarioCombined}

// DefaultScenarioSelection is what the sandbox shows before the user picks.
var DefaultScenarioSelection = []ScenarioKey{ScenarioBaseline, ScenarioHighAQI, ScenarioFestival}

// ParseScenarioKey reports whether s names a known scenario.
func ParseScenarioKey(s string) (ScenarioKey, bool) {
	for _, k := range ScenarioOrder {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// ScenarioPoint is one predicted value of a scenario. Date may be empty.
// Missing marks a point the backend sent without any prediction.
type ScenarioPoint struct {
	Date      string  `json:"date,omitempty"`
	Predicted float64 `json:"predicted"`
	Missing   bool    `json:"missing,omitempty"`
}

type ScenarioStats struct {
	Average float64 `json:"average"`
	Peak    float64 `json:"peak"`
}

// ScenarioSet holds the four independently sized series returned by the backend.
type ScenarioSet struct {
	HorizonDays int                             `json:"horizon_days,omitempty"`
	Series      map[ScenarioKey][]ScenarioPoint `json:"series"`
	Stats       map[ScenarioKey]*ScenarioStats  `json:"stats,omitempty"`
}

// ScenarioRow is one aligned chart row. A nil column renders as JSON null.
type ScenarioRow struct {
	Label    string   `json:"date"`
	Baseline *float64 `json:"baseline"`
	HighAQI  *float64 `json:"high_aqi"`
	Festival *float64 `json:"festival"`
	Combined *float64 `json:"combined"`
}

// Set assigns the column for key.
func (r *ScenarioRow) Set(key ScenarioKey, v *float64) {
	switch key {
	case ScenarioBaseline:
		r.Baseline = v
	case ScenarioHighAQI:
		r.HighAQI = v
	case ScenarioFestival:
		r.Festival = v
	case ScenarioCombined:
		r.Combined = v
	}
}

// Get returns the column for key.
func (r ScenarioRow) Get(key ScenarioKey) *float64 {
	switch key {
	case ScenarioBaseline:
		return r.Baseline
	case ScenarioHighAQI:
		return r.HighAQI
	case ScenarioFestival:
		return r.Festival
	case ScenarioCombined:
		return r.Combined
	}
	return nil
}

// CostImpact estimates the extra spend of the high-AQI scenario over baseline.
type CostImpact struct {
	ExtraPeakAdmissions float64                 `json:"extra_peak_admissions"`
	StaffingCost        float64                 `json:"staffing_cost_inr"`
	SupplyCost          float64                 `json:"supply_cost_inr"`
	TotalCost           float64                 `json:"total_cost_inr"`
	AverageDelta        map[ScenarioKey]float64 `json:"average_delta_vs_baseline"`
}

// ScenarioView is what the sandbox endpoint returns.
type ScenarioView struct {
	HorizonDays int                            `json:"horizon_days"`
	Selected    []ScenarioKey                  `json:"selected"`
	Rows        []ScenarioRow                  `json:"rows"`
	Empty       bool                           `json:"empty"`
	Stats       map[ScenarioKey]*ScenarioStats `json:"stats,omitempty"`
	CostImpact  *CostImpact                    `json:"cost_impact,omitempty"`
	DataSource  DataSource                     `json:"data_source"`
	Warnings    []string                       `json:"warnings,omitempty"`
}
