package usecase

import (
	"PulseGateway/internal/domain/models"
	svcmetrics "PulseGateway/internal/service/metrics"
)

// warnings collects non-blocking degradation notes for one view, in order.
type warnings struct {
	view string
	list []string
}

func newWarnings(view string) *warnings { return &warnings{view: view} }

func (w *warnings) add(source, msg string) {
	svcmetrics.ViewWarnings.WithLabelValues(w.view, source).Inc()
	w.list = append(w.list, msg)
}

func (w *warnings) headline() string {
	if len(w.list) == 0 {
		return ""
	}
	return w.list[0]
}

func (w *warnings) dataSource() models.DataSource {
	if len(w.list) > 0 {
		return models.DataSourceFallback
	}
	return models.DataSourceLive
}
