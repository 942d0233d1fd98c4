package repository

import (
	"context"

	"PulseGateway/internal/domain/models"
)

// PulseAPI is the primary backend. Implementations return canonical models only.
type PulseAPI interface {
	Forecast(ctx context.Context, p models.ForecastParams) (*models.Forecast, error)
	EvaluateDecision(ctx context.Context, aqiOverride *float64) (*models.Decision, error)
	KPI(ctx context.Context) (*models.KPI, error)
	Inventory(ctx context.Context) ([]models.InventoryItem, error)
	Staffing(ctx context.Context) ([]models.StaffMember, error)
	Departments(ctx context.Context) ([]models.DepartmentInfo, error)
	Scenarios(ctx context.Context, horizonDays int) (*models.ScenarioSet, error)
	ApproveAction(ctx context.Context, req models.ApproveActionRequest) (*models.ApproveActionResult, error)
	Chat(ctx context.Context, message string) (string, error)
}

// CareAPI is the secondary backend holding alerts, hospital dashboards and documents.
type CareAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	ListAlerts(ctx context.Context) ([]models.CareAlert, error)
	CreateAlert(ctx context.Context, a models.CareAlertCreate) (*models.CareAlert, error)
	Dashboard(ctx context.Context, hospitalID int) (*models.HospitalDashboard, error)
	SearchDocuments(ctx context.Context, hospitalID int, query string) ([]models.DocumentHit, error)
}

type WeatherProvider interface {
	Current(ctx context.Context, city string) (*models.Weather, error)
	AirQuality(ctx context.Context, lat, lon float64) (*models.AirQuality, error)
}

// AgentResultsSource yields the worker's latest analysis.
type AgentResultsSource interface {
	Latest(ctx context.Context) (*models.AgentResults, error)
}

type AlertPublisher interface {
	Publish(ctx context.Context, ev *models.AlertEvent) error
	PublishBatch(ctx context.Context, evs []*models.AlertEvent) error
	Close() error
}

type AlertStore interface {
	Store(ctx context.Context, ev *models.AlertEvent) error
	StoreBatch(ctx context.Context, evs []*models.AlertEvent) error
	Query(ctx context.Context, q models.AlertHistoryQuery) ([]*models.AlertEvent, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordUpstream(upstream, endpoint string, err error)
	RecordFallback(source string)
	RecordError(kind string)
	RecordActiveAlerts(severity string, n int)
	RecordLatency(op string, seconds float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordUpstream(string, string, error) {}
func (NopMetrics) RecordFallback(string)                {}
func (NopMetrics) RecordError(string)                   {}
func (NopMetrics) RecordActiveAlerts(string, int)       {}
func (NopMetrics) RecordLatency(string, float64)        {}
