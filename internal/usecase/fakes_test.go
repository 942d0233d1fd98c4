package usecase

import (
	"context"
	"errors"
	"sync"

	"PulseGateway/internal/domain/models"
)

var errUpstream = errors.New("upstream down")

// fakePulse answers from the configured funcs; a nil func fails with errUpstream.
type fakePulse struct {
	forecastFn    func(ctx context.Context, p models.ForecastParams) (*models.Forecast, error)
	decisionFn    func(ctx context.Context, aqi *float64) (*models.Decision, error)
	kpiFn         func(ctx context.Context) (*models.KPI, error)
	inventoryFn   func(ctx context.Context) ([]models.InventoryItem, error)
	staffingFn    func(ctx context.Context) ([]models.StaffMember, error)
	departmentsFn func(ctx context.Context) ([]models.DepartmentInfo, error)
	scenariosFn   func(ctx context.Context, horizonDays int) (*models.ScenarioSet, error)
	approveFn     func(ctx context.Context, req models.ApproveActionRequest) (*models.ApproveActionResult, error)
	chatFn        func(ctx context.Context, message string) (string, error)
}

func (f *fakePulse) Forecast(ctx context.Context, p models.ForecastParams) (*models.Forecast, error) {
	if f.forecastFn == nil {
		return nil, errUpstream
	}
	return f.forecastFn(ctx, p)
}

func (f *fakePulse) EvaluateDecision(ctx context.Context, aqi *float64) (*models.Decision, error) {
	if f.decisionFn == nil {
		return nil, errUpstream
	}
	return f.decisionFn(ctx, aqi)
}

func (f *fakePulse) KPI(ctx context.Context) (*models.KPI, error) {
	if f.kpiFn == nil {
		return nil, errUpstream
	}
	return f.kpiFn(ctx)
}

func (f *fakePulse) Inventory(ctx context.Context) ([]models.InventoryItem, error) {
	if f.inventoryFn == nil {
		return nil, errUpstream
	}
	return f.inventoryFn(ctx)
}

func (f *fakePulse) Staffing(ctx context.Context) ([]models.StaffMember, error) {
	if f.staffingFn == nil {
		return nil, errUpstream
	}
	return f.staffingFn(ctx)
}

func (f *fakePulse) Departments(ctx context.Context) ([]models.DepartmentInfo, error) {
	if f.departmentsFn == nil {
		return nil, errUpstream
	}
	return f.departmentsFn(ctx)
}

func (f *fakePulse) Scenarios(ctx context.Context, horizonDays int) (*models.ScenarioSet, error) {
	if f.scenariosFn == nil {
		return nil, errUpstream
	}
	return f.scenariosFn(ctx, horizonDays)
}

func (f *fakePulse) ApproveAction(ctx context.Context, req models.ApproveActionRequest) (*models.ApproveActionResult, error) {
	if f.approveFn == nil {
		return nil, errUpstream
	}
	return f.approveFn(ctx, req)
}

func (f *fakePulse) Chat(ctx context.Context, message string) (string, error) {
	if f.chatFn == nil {
		return "", errUpstream
	}
	return f.chatFn(ctx, message)
}

type fakeCare struct {
	loginFn     func(ctx context.Context, username, password string) (string, error)
	dashboardFn func(ctx context.Context, hospitalID int) (*models.HospitalDashboard, error)
	searchFn    func(ctx context.Context, hospitalID int, query string) ([]models.DocumentHit, error)

	mu      sync.Mutex
	created []models.CareAlertCreate
	nextID  int
}

func (f *fakeCare) Login(ctx context.Context, username, password string) (string, error) {
	if f.loginFn == nil {
		return "", errUpstream
	}
	return f.loginFn(ctx, username, password)
}

func (f *fakeCare) ListAlerts(context.Context) ([]models.CareAlert, error) { return nil, nil }

func (f *fakeCare) CreateAlert(_ context.Context, a models.CareAlertCreate) (*models.CareAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.created = append(f.created, a)
	return &models.CareAlert{ID: f.nextID, Severity: a.Severity, Title: a.Title, Status: a.Status}, nil
}

func (f *fakeCare) Dashboard(ctx context.Context, hospitalID int) (*models.HospitalDashboard, error) {
	if f.dashboardFn == nil {
		return nil, errUpstream
	}
	return f.dashboardFn(ctx, hospitalID)
}

func (f *fakeCare) SearchDocuments(ctx context.Context, hospitalID int, query string) ([]models.DocumentHit, error) {
	if f.searchFn == nil {
		return nil, errUpstream
	}
	return f.searchFn(ctx, hospitalID, query)
}

// recordingSink keeps every event it is handed.
type recordingSink struct {
	mu  sync.Mutex
	evs []models.AlertEvent
	err error
}

func (s *recordingSink) Process(_ context.Context, ev *models.AlertEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evs = append(s.evs, *ev)
	return s.err
}

func (s *recordingSink) events() []models.AlertEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AlertEvent(nil), s.evs...)
}

type publishedMessage struct {
	msgType string
	payload interface{}
}

type fakeOutbox struct {
	mu     sync.Mutex
	msgs   []publishedMessage
	err    error
	calls  int
	failOn int // 1-based call number that fails once; 0 never
}

func (o *fakeOutbox) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.err != nil {
		return o.err
	}
	if o.calls == o.failOn {
		return errUpstream
	}
	o.msgs = append(o.msgs, publishedMessage{msgType, payload})
	return nil
}

func (o *fakeOutbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.msgs)
}

type fakeStaticSource struct {
	res   *models.AgentResults
	err   error
	calls int
}

func (s *fakeStaticSource) Latest(context.Context) (*models.AgentResults, error) {
	s.calls++
	return s.res, s.err
}

func kpiOf(k models.KPI) func(context.Context) (*models.KPI, error) {
	return func(context.Context) (*models.KPI, error) { return &k, nil }
}

func decisionOf(d *models.Decision) func(context.Context, *float64) (*models.Decision, error) {
	return func(context.Context, *float64) (*models.Decision, error) { return d, nil }
}
