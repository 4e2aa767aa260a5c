package events

import (
	"context"
	"fmt"
	"time"

	"contractor-verify/internal/constants"
	"contractor-verify/pkg/database"
)

// SQLEventStore stores events in a SQL table with ordered IDs.
// Table schema:
// CREATE TABLE IF NOT EXISTS rate_limit_events (
//   id BIGINT AUTO_INCREMENT PRIMARY KEY,
//   identifier VARCHAR(255) NOT NULL,
//   action VARCHAR(128) NOT NULL,
//   at DATETIME(6) NOT NULL,
//   KEY idx_identifier_action_at (identifier, action, at),
//   KEY idx_at (at)
// );

type SQLEventStore struct {
	db *database.DB
}

func NewSQLEventStore(db *database.DB) (*SQLEventStore, error) {
	s := &SQLEventStore{db: db}
	if err := s.ensureTable(); err != nil {
		return nil, fmt.Errorf("events: ensure table: %w", err)
	}
	return s, nil
}

func (s *SQLEventStore) ensureTable() error {
	qry := `CREATE TABLE IF NOT EXISTS rate_limit_events (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		identifier VARCHAR(255) NOT NULL,
		action VARCHAR(128) NOT NULL,
		at DATETIME(6) NOT NULL,
		KEY idx_identifier_action_at (identifier, action, at),
		KEY idx_at (at)
	)`
	_, err := s.db.Conn().Exec(qry)
	return err
}

func (s *SQLEventStore) Append(ctx context.Context, e Event) error {
	ctx, cancel := context.WithTimeout(ctx, constants.EventsSQLTimeoutDefault)
	defer cancel()

	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO rate_limit_events (identifier, action, at) VALUES (?, ?, ?)`,
		e.Identifier, e.Action, at)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *SQLEventStore) CountSince(ctx context.Context, identifier, action string, since time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.EventsSQLTimeoutDefault)
	defer cancel()

	var n int
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rate_limit_events WHERE identifier = ? AND action = ? AND at >= ?`,
		identifier, action, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// PurgeBefore deletes expired events across all identifiers and actions.
// Deliberately coarser than the per-key query; a single DELETE keeps the
// table bounded without per-key bookkeeping.
func (s *SQLEventStore) PurgeBefore(ctx context.Context, cutoff time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, constants.EventsSQLTimeoutDefault)
	defer cancel()

	_, err := s.db.Conn().ExecContext(ctx,
		`DELETE FROM rate_limit_events WHERE at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("purge events: %w", err)
	}
	return nil
}
