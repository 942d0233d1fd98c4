package models

// CareAlert is an alert row stored by the secondary backend.
type CareAlert struct {
	ID       int    `json:"id"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Status   string `json:"status"`
	TS       string `json:"ts"`
}

// CareAlertCreate is the body of POST /alerts.
type CareAlertCreate struct {
	HospitalID int                    `json:"hospital_id"`
	Severity   string                 `json:"severity"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	ActionJSON map[string]interface{} `json:"action_json"`
	Status     string                 `json:"status"`
}

type DepartmentForecast struct {
	DepartmentID int     `json:"department_id"`
	HorizonDate  string  `json:"horizon_date"`
	InflowPred   float64 `json:"inflow_pred"`
	InflowCILow  float64 `json:"inflow_ci_low"`
	InflowCIHigh float64 `json:"inflow_ci_high"`
}

type HospitalLoad struct {
	BedsTotal    int `json:"beds_total"`
	BedsOccupied int `json:"beds_occupied"`
	ICUOccupied  int `json:"icu_occupied"`
	ICUTotal     int `json:"icu_total"`
	StaffOnShift int `json:"staff_on_shift"`
}

// HospitalDashboard is GET /dashboard/:id as the care backend returns it.
type HospitalDashboard struct {
	Forecasts []DepartmentForecast `json:"forecasts"`
	Alerts    []CareAlert          `json:"alerts"`
	Load      *HospitalLoad        `json:"load"`
}

// ChartPoint is one ER forecast point for the hospital overview chart.
type ChartPoint struct {
	Date string  `json:"date"`
	Pred float64 `json:"pred"`
	Lo   float64 `json:"lo"`
	Hi   float64 `json:"hi"`
}

// HospitalOverview is the derived view of a hospital dashboard.
type HospitalOverview struct {
	HospitalID       int           `json:"hospital_id"`
	ERChart          []ChartPoint  `json:"er_chart"`
	NextERPrediction *ChartPoint   `json:"next_er_prediction,omitempty"`
	BedUtilization   float64       `json:"bed_utilization_pct"`
	ICUUtilization   float64       `json:"icu_utilization_pct"`
	Load             *HospitalLoad `json:"load,omitempty"`
	OpenAlerts       []CareAlert   `json:"open_alerts"`
}

type DocumentHit struct {
	ID      interface{} `json:"id,omitempty"`
	Title   string      `json:"title"`
	Snippet string      `json:"snippet,omitempty"`
	Score   float64     `json:"score,omitempty"`
	Source  string      `json:"source,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}
