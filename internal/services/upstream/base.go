package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	domrepo "PulseGateway/internal/domain/repository"
	xhttp "PulseGateway/pkg/http"
)

// Base provides the shared request plumbing for the upstream HTTP clients.
// Every call is recorded against the upstream name and endpoint label.
type Base struct {
	name    string
	baseURL string
	client  *xhttp.Client
	metrics domrepo.Metrics
}

func NewBase(name, baseURL string, client *xhttp.Client, metrics domrepo.Metrics) *Base {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	if client == nil {
		client = xhttp.NewClient()
	}
	return &Base{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		metrics: metrics,
	}
}

func (b *Base) Name() string { return b.name }

func (b *Base) URL() string { return b.baseURL }

// GetJSON issues GET baseURL+path with query and decodes the JSON body into dest.
func (b *Base) GetJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	return b.Do(ctx, path, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + path,
		QueryParams: query,
	}, dest)
}

// PostJSON posts the given payload to path under baseURL and decodes JSON into dest.
func (b *Base) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	return b.Do(ctx, path, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Headers: map[string]string{
			"Content-Type": xhttp.ContentTypeJSON,
		},
		Body: payload,
	}, dest)
}

// PostForm posts a form-encoded body.
func (b *Base) PostForm(ctx context.Context, path string, form url.Values, dest interface{}) error {
	return b.Do(ctx, path, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Headers: map[string]string{
			"Content-Type": xhttp.ContentTypeForm,
		},
		Body: form,
	}, dest)
}

// Do sends opts and records the outcome under label.
func (b *Base) Do(ctx context.Context, label string, opts *xhttp.RequestOptions, dest interface{}) error {
	start := time.Now()
	err := b.client.SendAndParse(ctx, opts, dest)
	b.metrics.RecordUpstream(b.name, label, err)
	b.metrics.RecordLatency(b.name+"_"+strings.Trim(strings.ReplaceAll(label, "/", "_"), "_"), time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%s %s %s: %w", b.name, opts.Method, label, err)
	}
	return nil
}
