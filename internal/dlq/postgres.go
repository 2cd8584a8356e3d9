package dlq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresQueue stores quarantined messages in the dlq_events table so
// they survive restarts.
type PostgresQueue struct {
	pool *pgxpool.Pool
}

func NewPostgresQueue(pool *pgxpool.Pool) *PostgresQueue {
	return &PostgresQueue{pool: pool}
}

func (q *PostgresQueue) Send(ctx context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		slog.Error("DLQ message rejected", "error", err)
		return err
	}

	const sql = `
		INSERT INTO dlq_events (id, event_name, payload, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := q.pool.Exec(ctx, sql, m.ID, m.EventName, m.Payload, m.RetryCount, m.Timestamp)
	if err != nil {
		return fmt.Errorf("insert dlq event: %w", err)
	}

	slog.Warn("event sent to DLQ", "event", m.EventName, "id", m.ID, "retry_count", m.RetryCount)
	return nil
}

func (q *PostgresQueue) GetEvents(ctx context.Context) ([]Message, error) {
	const sql = `
		SELECT id, event_name, payload, retry_count, created_at
		FROM dlq_events
		ORDER BY created_at ASC
	`

	rows, err := q.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query dlq events: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.EventName, &m.Payload, &m.RetryCount, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan dlq event: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, nil
}

func (q *PostgresQueue) DeleteEvent(ctx context.Context, id string) error {
	const sql = `DELETE FROM dlq_events WHERE id = $1`

	if _, err := q.pool.Exec(ctx, sql, id); err != nil {
		return fmt.Errorf("delete dlq event: %w", err)
	}
	return nil
}
