package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseGateway/internal/domain/models"
)

func boardAlerts() []models.Alert {
	return []models.Alert{
		{ID: "a", Severity: models.SeverityMedium, Message: "medium"},
		{ID: "b", Severity: models.SeverityCritical, Message: "critical"},
		{ID: "c", Severity: models.SeverityHigh, Message: "high"},
		{ID: "d", Severity: models.SeverityCritical, Message: "critical 2"},
	}
}

func TestBoardMergeDedupes(t *testing.T) {
	sink := &recordingSink{}
	b := NewAlertBoard(sink, nil, nil)
	ctx := context.Background()

	added := b.Merge(ctx, boardAlerts())
	assert.Len(t, added, 4)

	replay := boardAlerts()
	replay[0].Message = "changed"
	added = b.Merge(ctx, append(replay, models.Alert{ID: ""}))
	assert.Empty(t, added)
	assert.Equal(t, 4, b.Len())

	p := b.Partition()
	ids := []string{}
	for _, a := range p.Active {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids, "severity order, stable within a severity")
	assert.Equal(t, models.AlertCounts{Critical: 2, High: 1, Medium: 1}, p.Counts)

	for _, a := range p.Active {
		if a.ID == "a" {
			assert.Equal(t, "medium", a.Message, "existing entries are never replaced")
		}
	}
	assert.Len(t, sink.events(), 4)
}

func TestBoardAcknowledge(t *testing.T) {
	sink := &recordingSink{}
	b := NewAlertBoard(sink, nil, nil)
	ctx := context.Background()
	b.Merge(ctx, boardAlerts())

	a, ok := b.Acknowledge(ctx, "b")
	require.True(t, ok)
	assert.True(t, a.Acknowledged)

	_, ok = b.Acknowledge(ctx, "b")
	assert.True(t, ok)
	_, ok = b.Acknowledge(ctx, "zzz")
	assert.False(t, ok)

	p := b.Partition()
	assert.Len(t, p.Active, 3)
	require.Len(t, p.Acknowledged, 1)
	assert.Equal(t, "b", p.Acknowledged[0].ID)
	assert.Equal(t, 1, p.Counts.Critical)

	evs := sink.events()
	require.Len(t, evs, 5, "a repeated acknowledge emits nothing")
	assert.Equal(t, models.AlertEventAcknowledged, evs[4].Type)
	assert.Equal(t, "b", evs[4].Alert.ID)

	// re-merging an acknowledged id does not resurrect it
	b.Merge(ctx, []models.Alert{{ID: "b", Severity: models.SeverityCritical}})
	assert.Len(t, b.Partition().Acknowledged, 1)
}

func TestBoardSubscribe(t *testing.T) {
	b := NewAlertBoard(nil, nil, nil)
	ch, cancel := b.Subscribe(4)

	b.Merge(context.Background(), []models.Alert{{ID: "x", Severity: models.SeverityLow}})

	select {
	case ev := <-ch:
		assert.Equal(t, models.AlertEventCreated, ev.Type)
		assert.Equal(t, "x", ev.Alert.ID)
		assert.False(t, ev.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no event")
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestBoardEmptyPartition(t *testing.T) {
	p := NewAlertBoard(nil, nil, nil).Partition()
	assert.NotNil(t, p.Active)
	assert.NotNil(t, p.Acknowledged)
}
