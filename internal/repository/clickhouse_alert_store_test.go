package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseGateway/internal/domain/models"
)

func TestHistorySQL(t *testing.T) {
	from := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	stmt, args := HistorySQL("pulse.alert_events", models.AlertHistoryQuery{From: from, To: to})
	assert.Equal(t, "SELECT "+alertColumns+" FROM pulse.alert_events WHERE at >= ? AND at <= ? ORDER BY at DESC LIMIT ?", stmt)
	assert.Equal(t, []interface{}{from, to, 200}, args)

	stmt, args = HistorySQL("pulse.alert_events", models.AlertHistoryQuery{From: from, To: to, Severity: "critical", Limit: 10})
	assert.True(t, strings.Contains(stmt, "AND severity = ? ORDER BY"))
	assert.Equal(t, []interface{}{from, to, "critical", 10}, args)
}

func TestEventArgs(t *testing.T) {
	at := time.Date(2024, 3, 7, 15, 0, 0, 0, time.FixedZone("IST", 19800))
	args := eventArgs(&models.AlertEvent{
		Type:  models.AlertEventAcknowledged,
		Alert: models.Alert{ID: "occ_high", Severity: models.SeverityHigh, Category: "Capacity", Acknowledged: true, Timestamp: at},
		At:    at,
	})
	require.Len(t, args, len(strings.Split(alertColumns, ",")))
	assert.Equal(t, at.UTC(), args[0])
	assert.Equal(t, "acknowledged", args[1])
	assert.Equal(t, uint8(1), args[8])
}

func TestAlertSchema(t *testing.T) {
	stmts := AlertSchema("pulse")
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS pulse", stmts[0])
	assert.Contains(t, stmts[1], "pulse.alert_events")
	assert.Contains(t, stmts[1], "PARTITION BY toYYYYMM(at)")
}
