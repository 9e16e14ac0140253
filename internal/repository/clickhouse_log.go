package repository

import (
	"context"
	"fmt"
	"time"

	"Sully/internal/domain/models"
	"Sully/pkg/clickhouse"
)

// exchangeLogSchema is applied once at startup (idempotent).
var exchangeLogSchema = []string{
	`CREATE TABLE IF NOT EXISTS chat_exchanges (
		id         String,
		user       String,
		message    String,
		response   String,
		created_at DateTime64(3)
	) ENGINE = MergeTree()
	ORDER BY (user, created_at)`,
	`CREATE TABLE IF NOT EXISTS market_alerts (
		symbol     String,
		severity   LowCardinality(String),
		message    String,
		created_at DateTime64(3)
	) ENGINE = MergeTree()
	ORDER BY (symbol, created_at)`,
}

// ClickHouseLog is the durable analytical log. Callers treat every write
// as best-effort; a failed insert is logged upstream, never surfaced to
// the user.
type ClickHouseLog struct {
	client *clickhouse.Client
}

// NewClickHouseLog creates the log and ensures its tables exist.
func NewClickHouseLog(ctx context.Context, client *clickhouse.Client) (*ClickHouseLog, error) {
	if err := client.InitSchema(ctx, exchangeLogSchema); err != nil {
		return nil, fmt.Errorf("exchange log schema: %w", err)
	}
	return &ClickHouseLog{client: client}, nil
}

func (l *ClickHouseLog) LogExchange(ctx context.Context, user string, ex models.Exchange) error {
	created := ex.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := l.client.DB().ExecContext(ctx,
		`INSERT INTO chat_exchanges (id, user, message, response, created_at) VALUES (?, ?, ?, ?, ?)`,
		ex.ID, user, ex.Message, ex.Response, created,
	)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

func (l *ClickHouseLog) LogAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	tx, err := l.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin alert batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO market_alerts (symbol, severity, message, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare alert batch: %w", err)
	}
	defer stmt.Close()

	for _, a := range alerts {
		if _, err := stmt.ExecContext(ctx, a.Symbol, a.Severity, a.Message, a.Timestamp); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert alert %s: %w", a.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit alert batch: %w", err)
	}
	return nil
}

func (l *ClickHouseLog) Close() error {
	return l.client.Close()
}
