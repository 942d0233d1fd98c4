package pulseapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	"PulseGateway/internal/services/upstream"
	xhttp "PulseGateway/pkg/http"
)

// Client talks to the primary Pulse backend and returns canonical models.
type Client struct {
	base *upstream.Base
}

func New(baseURL string, client *xhttp.Client, metrics domrepo.Metrics) *Client {
	return &Client{base: upstream.NewBase("pulse", baseURL, client, metrics)}
}

func (c *Client) Forecast(ctx context.Context, p models.ForecastParams) (*models.Forecast, error) {
	var b []byte
	if err := c.base.PostJSON(ctx, "/api/forecast", p, &b); err != nil {
		return nil, err
	}
	return DecodeForecast(b)
}

func (c *Client) EvaluateDecision(ctx context.Context, aqiOverride *float64) (*models.Decision, error) {
	q := url.Values{}
	if aqiOverride != nil {
		q.Set("aqi_override", strconv.FormatFloat(*aqiOverride, 'f', -1, 64))
	}
	var b []byte
	if err := c.base.GetJSON(ctx, "/api/decision/evaluate", q, &b); err != nil {
		return nil, err
	}
	return DecodeDecision(b)
}

func (c *Client) KPI(ctx context.Context) (*models.KPI, error) {
	var b []byte
	if err := c.base.GetJSON(ctx, "/api/kpi", nil, &b); err != nil {
		return nil, err
	}
	return DecodeKPI(b)
}

func (c *Client) Inventory(ctx context.Context) ([]models.InventoryItem, error) {
	var b []byte
	if err := c.base.GetJSON(ctx, "/api/inventory", nil, &b); err != nil {
		return nil, err
	}
	return DecodeInventory(b)
}

func (c *Client) Staffing(ctx context.Context) ([]models.StaffMember, error) {
	var b []byte
	if err := c.base.GetJSON(ctx, "/api/staffing", nil, &b); err != nil {
		return nil, err
	}
	return DecodeStaffing(b)
}

func (c *Client) Departments(ctx context.Context) ([]models.DepartmentInfo, error) {
	var b []byte
	if err := c.base.GetJSON(ctx, "/api/departments", nil, &b); err != nil {
		return nil, err
	}
	return DecodeDepartments(b)
}

func (c *Client) Scenarios(ctx context.Context, horizonDays int) (*models.ScenarioSet, error) {
	q := url.Values{"horizon_days": {strconv.Itoa(horizonDays)}}
	var b []byte
	if err := c.base.GetJSON(ctx, "/api/scenarios", q, &b); err != nil {
		return nil, err
	}
	set, err := DecodeScenarios(b)
	if err != nil {
		return nil, err
	}
	set.HorizonDays = horizonDays
	return set, nil
}

// ApproveAction posts the approval once. Failures surface to the caller.
func (c *Client) ApproveAction(ctx context.Context, req models.ApproveActionRequest) (*models.ApproveActionResult, error) {
	var res struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		ActionID string `json:"action_id"`
	}
	if err := c.base.PostJSON(ctx, "/api/actions/approve", req, &res); err != nil {
		return nil, err
	}
	if res.ActionID == "" {
		res.ActionID = req.ActionID
	}
	return &models.ApproveActionResult{ActionID: res.ActionID, Status: res.Status, Message: res.Message}, nil
}

func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var res struct {
		Response string `json:"response"`
	}
	if err := c.base.PostJSON(ctx, "/api/agent-chat", map[string]string{"message": message}, &res); err != nil {
		return "", err
	}
	if res.Response == "" {
		return "", fmt.Errorf("pulse chat: empty response")
	}
	return res.Response, nil
}

var _ domrepo.PulseAPI = (*Client)(nil)
