package agentresults

import (
	"context"
	"fmt"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	"PulseGateway/internal/services/upstream"
	xhttp "PulseGateway/pkg/http"
)

// StaticSource reads the worker's latest_results.json over HTTP.
type StaticSource struct {
	base *upstream.Base
	url  string
}

func NewStaticSource(resultsURL string, client *xhttp.Client, metrics domrepo.Metrics) *StaticSource {
	return &StaticSource{base: upstream.NewBase("worker", resultsURL, client, metrics), url: resultsURL}
}

func (s *StaticSource) Latest(ctx context.Context) (*models.AgentResults, error) {
	var out models.AgentResults
	err := s.base.Do(ctx, "/latest_results.json", &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.url,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Metadata.AnalysisID == "" {
		return nil, fmt.Errorf("worker results: missing analysis_id")
	}
	return &out, nil
}

var _ domrepo.AgentResultsSource = (*StaticSource)(nil)
