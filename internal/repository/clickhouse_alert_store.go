package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	pkgch "PulseGateway/pkg/clickhouse"
	applogger "PulseGateway/pkg/logger"
)

const alertEventsTable = "alert_events"

// AlertSchema creates the alert history table in database db.
func AlertSchema(db string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            at           DateTime64(3, 'UTC'),
            event_type   LowCardinality(String),
            alert_id     String,
            severity     LowCardinality(String),
            category     LowCardinality(String),
            message      String,
            department   String,
            alert_ts     DateTime64(3, 'UTC'),
            acknowledged UInt8
        ) ENGINE = MergeTree
        PARTITION BY toYYYYMM(at)
        ORDER BY (at, alert_id)`, db, alertEventsTable),
	}
}

// ClickHouseAlertStore keeps alert lifecycle events for history queries.
type ClickHouseAlertStore struct {
	ch    *pkgch.Client
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewClickHouseAlertStore(ch *pkgch.Client, database string, l *applogger.Logger) domrepo.AlertStore {
	return &ClickHouseAlertStore{
		ch:    ch,
		db:    ch.DB(),
		table: database + "." + alertEventsTable,
		l:     l.With("alert_store"),
	}
}

const alertColumns = "at, event_type, alert_id, severity, category, message, department, alert_ts, acknowledged"

func eventArgs(ev *models.AlertEvent) []interface{} {
	var ack uint8
	if ev.Alert.Acknowledged {
		ack = 1
	}
	return []interface{}{
		ev.At.UTC(),
		string(ev.Type),
		ev.Alert.ID,
		string(ev.Alert.Severity),
		ev.Alert.Category,
		ev.Alert.Message,
		ev.Alert.Department,
		ev.Alert.Timestamp.UTC(),
		ack,
	}
}

func (s *ClickHouseAlertStore) Store(ctx context.Context, ev *models.AlertEvent) error {
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, alertColumns)
	if _, err := s.db.ExecContext(ctx, q, eventArgs(ev)...); err != nil {
		s.l.Error("clickhouse alert insert error", applogger.String("alert_id", ev.Alert.ID), applogger.Error(err))
		return fmt.Errorf("store alert event: %w", err)
	}
	return nil
}

func (s *ClickHouseAlertStore) StoreBatch(ctx context.Context, evs []*models.AlertEvent) error {
	const chunkSize = 1000
	for start := 0; start < len(evs); start += chunkSize {
		end := start + chunkSize
		if end > len(evs) {
			end = len(evs)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*9)
		for _, ev := range evs[start:end] {
			if ev == nil || ev.Alert.ID == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, eventArgs(ev)...)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, alertColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse alert batch insert error", applogger.Int("rows", len(values)), applogger.Error(err))
			return fmt.Errorf("store alert batch: %w", err)
		}
	}
	return nil
}

// HistorySQL builds the history query; newest first.
func HistorySQL(table string, q models.AlertHistoryQuery) (string, []interface{}) {
	where := []string{"at >= ?", "at <= ?"}
	args := []interface{}{q.From.UTC(), q.To.UTC()}
	if q.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, q.Severity)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit)
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY at DESC LIMIT ?",
		alertColumns, table, strings.Join(where, " AND ")), args
}

func (s *ClickHouseAlertStore) Query(ctx context.Context, q models.AlertHistoryQuery) ([]*models.AlertEvent, error) {
	start := time.Now()
	stmt, args := HistorySQL(s.table, q)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		s.l.Error("clickhouse alert history query error", applogger.Error(err))
		return nil, fmt.Errorf("query alert history: %w", err)
	}
	defer rows.Close()

	out := make([]*models.AlertEvent, 0, 64)
	for rows.Next() {
		var (
			ev       models.AlertEvent
			evType   string
			severity string
			ack      uint8
		)
		if err := rows.Scan(&ev.At, &evType, &ev.Alert.ID, &severity, &ev.Alert.Category,
			&ev.Alert.Message, &ev.Alert.Department, &ev.Alert.Timestamp, &ack); err != nil {
			return nil, fmt.Errorf("scan alert event: %w", err)
		}
		ev.Type = models.AlertEventType(evType)
		ev.Alert.Severity = models.Severity(severity)
		ev.Alert.Acknowledged = ack == 1
		out = append(out, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse alert history ok",
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)))
	return out, nil
}

func (s *ClickHouseAlertStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

// Close is a no-op; the client is owned by the app.
func (s *ClickHouseAlertStore) Close() error {
	return nil
}
