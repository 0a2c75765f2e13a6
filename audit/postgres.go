package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/tmsuite/console-gateway/config"
	"go.uber.org/zap"
)

const createTableStmt = `
	CREATE TABLE IF NOT EXISTS auth_events (
		id         UUID PRIMARY KEY,
		action     TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		user_id    TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL DEFAULT '',
		detail     TEXT NOT NULL DEFAULT '',
		timestamp  TIMESTAMPTZ NOT NULL
	)
`

// PostgresRecorder implements Recorder over a PostgreSQL table.
type PostgresRecorder struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresRecorder opens the audit database and ensures the schema
// exists.
func NewPostgresRecorder(cfg *config.DatabaseConfig, logger *zap.Logger) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableStmt); err != nil {
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	logger.Info("audit database connection established",
		zap.String("connection", cfg.LogString()))

	return &PostgresRecorder{db: db, logger: logger}, nil
}

// NewPostgresRecorderWithDB wraps an existing connection (tests).
func NewPostgresRecorderWithDB(db *sql.DB, logger *zap.Logger) *PostgresRecorder {
	return &PostgresRecorder{db: db, logger: logger}
}

// Record implements Recorder. Insert failures are logged and swallowed:
// the audit trail never blocks an auth flow.
func (r *PostgresRecorder) Record(ctx context.Context, event *Event) {
	query := `
		INSERT INTO auth_events (id, action, session_id, user_id, email, detail, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Action,
		event.SessionID,
		event.UserID,
		event.Email,
		event.Detail,
		event.Timestamp,
	)
	if err != nil {
		r.logger.Error("failed to insert audit event",
			zap.String("action", string(event.Action)),
			zap.Error(err))
		return
	}

	r.logger.Debug("audit event recorded",
		zap.String("id", event.ID.String()),
		zap.String("action", string(event.Action)))
}

// RecentBySession retrieves the most recent events for a session, newest
// first.
func (r *PostgresRecorder) RecentBySession(ctx context.Context, sessionID string, limit int) ([]*Event, error) {
	query := `
		SELECT id, action, session_id, user_id, email, detail, timestamp
		FROM auth_events
		WHERE session_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event := &Event{}
		if err := rows.Scan(
			&event.ID,
			&event.Action,
			&event.SessionID,
			&event.UserID,
			&event.Email,
			&event.Detail,
			&event.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}

	return events, nil
}

// HealthCheck pings the audit database
func (r *PostgresRecorder) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("audit database health check failed: %w", err)
	}
	return nil
}

// Close closes the audit database connection
func (r *PostgresRecorder) Close() error {
	r.logger.Info("closing audit database connection")
	return r.db.Close()
}
