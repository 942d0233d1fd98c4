package models

import "strings"

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority accepts any casing; unknown values are Low.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// ActionCategory identifies one decision-engine action bucket.
type ActionCategory string

const (
	ActionStaffing      ActionCategory = "staffing"
	ActionSupplies      ActionCategory = "supplies"
	ActionBedManagement ActionCategory = "bed_management"
	ActionAdvisory      ActionCategory = "advisory"
)

// ActionCategories lists buckets in display order.
var ActionCategories = []ActionCategory{ActionStaffing, ActionSupplies, ActionBedManagement, ActionAdvisory}

// Label is the human category shown on alerts and recommendations.
func (c ActionCategory) Label() string {
	switch c {
	case ActionStaffing:
		return "Staffing"
	case ActionSupplies:
		return "Supplies"
	case ActionBedManagement:
		return "Bed Mgmt"
	case ActionAdvisory:
		return "Advisory"
	default:
		return string(c)
	}
}

type ActionItem struct {
	Action   string         `json:"action"`
	Details  string         `json:"details,omitempty"`
	Priority Priority       `json:"priority"`
	Category ActionCategory `json:"category"`
}

// Decision is the normalised decision-engine evaluation.
type Decision struct {
	RiskLevel        string                          `json:"risk_level,omitempty"`
	RiskScore        float64                         `json:"operational_risk_score"`
	ScoreExplanation string                          `json:"score_explanation,omitempty"`
	Actions          map[ActionCategory][]ActionItem `json:"actions"`
	ReasoningTrace   []string                        `json:"reasoning_trace,omitempty"`
}

// Flatten returns all actions in category display order. Each item's
// Category is set from the bucket it was listed under.
func (d *Decision) Flatten() []ActionItem {
	if d == nil {
		return nil
	}
	var out []ActionItem
	for _, c := range ActionCategories {
		for _, it := range d.Actions[c] {
			it.Category = c
			out = append(out, it)
		}
	}
	return out
}

type RecommendationStatus string

const (
	StatusUrgent   RecommendationStatus = "urgent"
	StatusPending  RecommendationStatus = "pending"
	StatusApproved RecommendationStatus = "approved"
)

type Recommendation struct {
	ID        string               `json:"id"`
	Category  string               `json:"category"`
	Action    string               `json:"action"`
	Reasoning []string             `json:"reasoning"`
	RiskScore float64              `json:"risk_score"`
	Status    RecommendationStatus `json:"status"`
}

// ApproveActionRequest is both the client request and the upstream body.
type ApproveActionRequest struct {
	ActionID string `json:"action_id" validate:"required"`
	Category string `json:"category" validate:"required"`
	Action   string `json:"action" validate:"required"`
}

type ApproveActionResult struct {
	ActionID string `json:"action_id"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
}
