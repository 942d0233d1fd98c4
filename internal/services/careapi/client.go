package careapi

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

// Client talks to the care backend. The bearer token comes from the session
// attached to the underlying http client, so login here is visible to every call.
type Client struct {
	base    *upstream.Base
	session *xhttp.Session
}

// New builds a care client whose requests carry the token held by session.
func New(baseURL string, session *xhttp.Session, metrics domrepo.Metrics, opts ...xhttp.ClientOption) *Client {
	opts = append(opts, xhttp.WithSession(session))
	return &Client{
		base:    upstream.NewBase("care", baseURL, xhttp.NewClient(opts...), metrics),
		session: session,
	}
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var res struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	form := url.Values{"username": {username}, "password": {password}}
	if err := c.base.PostForm(ctx, "/auth/login", form, &res); err != nil {
		return "", err
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("care login: no access_token in response")
	}
	c.session.Set(username, res.AccessToken)
	return res.AccessToken, nil
}

func (c *Client) ListAlerts(ctx context.Context) ([]models.CareAlert, error) {
	var out []models.CareAlert
	if err := c.base.GetJSON(ctx, "/alerts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAlert(ctx context.Context, a models.CareAlertCreate) (*models.CareAlert, error) {
	var out models.CareAlert
	if err := c.base.PostJSON(ctx, "/alerts", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Dashboard(ctx context.Context, hospitalID int) (*models.HospitalDashboard, error) {
	var out models.HospitalDashboard
	err := c.base.Do(ctx, "/dashboard", &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL() + "/dashboard/" + strconv.Itoa(hospitalID),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchDocuments(ctx context.Context, hospitalID int, query string) ([]models.DocumentHit, error) {
	q := url.Values{
		"hospital_id": {strconv.Itoa(hospitalID)},
		"query":       {query},
	}
	var out []models.DocumentHit
	if err := c.base.GetJSON(ctx, "/documents/search", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) baseURL() string { return c.base.URL() }

var _ domrepo.CareAPI = (*Client)(nil)
