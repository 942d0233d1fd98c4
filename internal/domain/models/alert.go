package models

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities for display; lower is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// ParseSeverity maps loose upstream spellings ("CRITICAL", "High") onto a Severity.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

type Alert struct {
	ID           string    `json:"id"`
	Severity     Severity  `json:"severity"`
	Category     string    `json:"category"`
	Message      string    `json:"message"`
	Department   string    `json:"department,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Acknowledged bool      `json:"acknowledged"`
}

// AlertCounts counts active alerts per severity.
type AlertCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
}

// AlertPartition is the board split into what still needs attention and what does not.
type AlertPartition struct {
	Active       []Alert     `json:"active"`
	Acknowledged []Alert     `json:"acknowledged"`
	Counts       AlertCounts `json:"counts"`
}

type AlertEventType string

const (
	AlertEventCreated      AlertEventType = "created"
	AlertEventAcknowledged AlertEventType = "acknowledged"
)

// AlertEvent is one lifecycle change on the alert board.
type AlertEvent struct {
	Type  AlertEventType `json:"type"`
	Alert Alert          `json:"alert"`
	At    time.Time      `json:"at"`
}

// AlertHistoryQuery filters the alert history table.
type AlertHistoryQuery struct {
	From     time.Time
	To       time.Time
	Severity string
	Limit    int
}
