package usecase

import (
	"fmt"
	"time"

	"PulseGateway/internal/domain/models"
	"PulseGateway/pkg/util"
)

const (
	occupancyThreshold = 85
	aqiHighThreshold   = 200
	aqiCritThreshold   = 250
	riskThreshold      = 80
)

// AlertSynthesizer turns KPI thresholds, low inventory and decision actions into alerts.
type AlertSynthesizer struct {
	bucket time.Duration
}

func NewAlertSynthesizer(bucket time.Duration) *AlertSynthesizer {
	if bucket <= 0 {
		bucket = time.Hour
	}
	return &AlertSynthesizer{bucket: bucket}
}

// FromKPI applies the three independent KPI rules.
func (s *AlertSynthesizer) FromKPI(k models.KPI, at time.Time) []models.Alert {
	var out []models.Alert
	if k.Occupancy > occupancyThreshold {
		out = append(out, models.Alert{
			ID:        "occ_high",
			Severity:  models.SeverityHigh,
			Category:  "Capacity",
			Message:   fmt.Sprintf("Hospital occupancy at %s%% - approaching capacity limit", util.FormatNumber(k.Occupancy)),
			Timestamp: at,
		})
	}
	if k.AQI > aqiHighThreshold {
		sev := models.SeverityHigh
		if k.AQI > aqiCritThreshold {
			sev = models.SeverityCritical
		}
		out = append(out, models.Alert{
			ID:        "aqi_high",
			Severity:  sev,
			Category:  "Environmental",
			Message:   fmt.Sprintf("Air Quality Index at %s - expect increased respiratory admissions", util.FormatNumber(k.AQI)),
			Timestamp: at,
		})
	}
	if k.RiskScore > riskThreshold {
		out = append(out, models.Alert{
			ID:        "risk_high",
			Severity:  models.SeverityHigh,
			Category:  "Operational Risk",
			Message:   fmt.Sprintf("Operational risk score at %s/100 - multiple risk factors present", util.FormatNumber(k.RiskScore)),
			Timestamp: at,
		})
	}
	return out
}

// FromInventory raises one alert per low-stock item; below half the minimum is critical.
func (s *AlertSynthesizer) FromInventory(items []models.InventoryItem, at time.Time) []models.Alert {
	var out []models.Alert
	for _, it := range items {
		if !it.LowStock() {
			continue
		}
		sev := models.SeverityMedium
		if it.CurrentStock < it.MinimumStock*0.5 {
			sev = models.SeverityCritical
		}
		msg := fmt.Sprintf("%s stock low: %s %s (min: %s)",
			it.ItemName, util.FormatNumber(it.CurrentStock), it.Unit, util.FormatNumber(it.MinimumStock))
		out = append(out, models.Alert{
			ID:         "inv_" + util.FirstNonEmpty(it.ItemID, it.ItemName),
			Severity:   sev,
			Category:   "Inventory",
			Message:    msg,
			Department: it.Category,
			Timestamp:  at,
		})
	}
	return out
}

// FromDecision maps every action item to an alert with a bucketed stable id.
func (s *AlertSynthesizer) FromDecision(d *models.Decision, at time.Time) []models.Alert {
	var out []models.Alert
	for _, a := range d.Flatten() {
		label := a.Category.Label()
		out = append(out, models.Alert{
			ID:        StableID("alert_", label, a.Action, at, s.bucket),
			Severity:  actionSeverity(a.Priority),
			Category:  label,
			Message:   a.Action,
			Timestamp: at,
		})
	}
	return out
}

// Recommendations maps actions for the agent panel. approved may be nil.
func (s *AlertSynthesizer) Recommendations(d *models.Decision, at time.Time, approved func(id string) bool) []models.Recommendation {
	actions := d.Flatten()
	out := make([]models.Recommendation, 0, len(actions))
	for _, a := range actions {
		label := a.Category.Label()
		rec := models.Recommendation{
			ID:        StableID("act_", label, a.Action, at, s.bucket),
			Category:  label,
			Action:    a.Action,
			Reasoning: []string{"AI Generated Action"},
			RiskScore: actionRisk(a.Priority),
			Status:    models.StatusPending,
		}
		if a.Details != "" {
			rec.Reasoning = []string{a.Details}
		}
		if a.Priority == models.PriorityHigh {
			rec.Status = models.StatusUrgent
		}
		if approved != nil && approved(rec.ID) {
			rec.Status = models.StatusApproved
		}
		out = append(out, rec)
	}
	return out
}

func actionSeverity(p models.Priority) models.Severity {
	switch p {
	case models.PriorityHigh:
		return models.SeverityCritical
	case models.PriorityMedium:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func actionRisk(p models.Priority) float64 {
	switch p {
	case models.PriorityHigh:
		return 0.9
	case models.PriorityMedium:
		return 0.6
	default:
		return 0.3
	}
}
