package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
)

type fakePublisher struct {
	err     error
	got     []*models.AlertEvent
	batches int
	closed  bool
}

func (p *fakePublisher) Publish(_ context.Context, ev *models.AlertEvent) error {
	p.got = append(p.got, ev)
	return p.err
}

func (p *fakePublisher) PublishBatch(_ context.Context, evs []*models.AlertEvent) error {
	p.batches++
	p.got = append(p.got, evs...)
	return p.err
}

func (p *fakePublisher) Close() error { p.closed = true; return nil }

type fakeStore struct {
	err     error
	got     []*models.AlertEvent
	lastQ   models.AlertHistoryQuery
	closed  bool
	queried bool
}

func (s *fakeStore) Store(_ context.Context, ev *models.AlertEvent) error {
	s.got = append(s.got, ev)
	return s.err
}

func (s *fakeStore) StoreBatch(_ context.Context, evs []*models.AlertEvent) error {
	s.got = append(s.got, evs...)
	return s.err
}

func (s *fakeStore) Query(_ context.Context, q models.AlertHistoryQuery) ([]*models.AlertEvent, error) {
	s.queried = true
	s.lastQ = q
	return nil, s.err
}

func (s *fakeStore) Health(context.Context) error { return s.err }
func (s *fakeStore) Close() error                 { s.closed = true; return nil }

func sampleEvent() *models.AlertEvent {
	return &models.AlertEvent{
		Type:  models.AlertEventCreated,
		Alert: models.Alert{ID: "occ_high", Severity: models.SeverityHigh},
		At:    time.Now(),
	}
}

func TestProcessorRoutesBySink(t *testing.T) {
	for _, tc := range []struct {
		sink           string
		wantPub, wantS int
	}{
		{SinkNone, 0, 0},
		{SinkKafka, 1, 0},
		{SinkClickHouse, 0, 1},
		{SinkBoth, 1, 1},
	} {
		t.Run(tc.sink, func(t *testing.T) {
			pub, store := &fakePublisher{}, &fakeStore{}
			p := NewAlertEventProcessor(pub, store, domrepo.NopMetrics{}, tc.sink)
			require.NoError(t, p.Process(context.Background(), sampleEvent()))
			assert.Len(t, pub.got, tc.wantPub)
			assert.Len(t, store.got, tc.wantS)
			assert.Equal(t, tc.sink, p.Sink())
		})
	}
}

func TestProcessorBothTriesBoth(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	store := &fakeStore{}
	p := NewAlertEventProcessor(pub, store, domrepo.NopMetrics{}, SinkBoth)

	err := p.Process(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Len(t, store.got, 1, "store still receives the event")
}

func TestProcessorMisconfigured(t *testing.T) {
	p := NewAlertEventProcessor(nil, nil, domrepo.NopMetrics{}, SinkKafka)
	assert.Error(t, p.Process(context.Background(), sampleEvent()))
	assert.Error(t, p.Process(context.Background(), nil))

	p = NewAlertEventProcessor(nil, nil, domrepo.NopMetrics{}, "s3")
	assert.Error(t, p.Process(context.Background(), sampleEvent()))
}

func TestProcessorBatchAndClose(t *testing.T) {
	pub, store := &fakePublisher{}, &fakeStore{}
	p := NewAlertEventProcessor(pub, store, domrepo.NopMetrics{}, SinkBoth)

	require.NoError(t, p.ProcessBatch(context.Background(), []*models.AlertEvent{sampleEvent(), sampleEvent()}))
	assert.Equal(t, 1, pub.batches)
	assert.Len(t, store.got, 2)
	require.NoError(t, p.ProcessBatch(context.Background(), nil))

	p.Close()
	assert.True(t, pub.closed)
	assert.True(t, store.closed)
}
