// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// reconcile_log.go records every schema reconciliation run in the database
// for audit and debugging purposes. Each entry captures how many groups were
// created, updated and removed, and the error of a failed run.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// ReconcileLogStore handles reconcile log operations.
type ReconcileLogStore struct {
	db *sql.DB
}

// NewReconcileLogStore creates a new ReconcileLogStore.
func NewReconcileLogStore(db *sql.DB) *ReconcileLogStore {
	return &ReconcileLogStore{db: db}
}

// Log records a reconciliation run. runErr is the error the run failed
// with, or nil.
func (s *ReconcileLogStore) Log(created, updated, removed int, runErr error) error {
	var msg sql.NullString
	if runErr != nil {
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO reconcile_log (created, updated, removed, error)
		VALUES ($1, $2, $3, $4)
	`, created, updated, removed, msg)
	if err != nil {
		return fmt.Errorf("insert reconcile log: %w", err)
	}
	slog.Debug("reconciliation logged", "created", created, "updated", updated, "removed", removed)
	return nil
}

// RecentEntries returns the most recent reconciliation runs, newest first.
func (s *ReconcileLogStore) RecentEntries(limit int) ([]ReconcileLogEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, created, updated, removed, error, reconciled_at
		FROM reconcile_log
		ORDER BY reconciled_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reconcile log: %w", err)
	}
	defer rows.Close()

	var entries []ReconcileLogEntry
	for rows.Next() {
		var e ReconcileLogEntry
		var msg sql.NullString
		if err := rows.Scan(&e.ID, &e.Created, &e.Updated, &e.Removed, &msg, &e.ReconciledAt); err != nil {
			return nil, fmt.Errorf("scan reconcile log: %w", err)
		}
		e.Error = msg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReconcileLogEntry represents a single reconciliation run.
type ReconcileLogEntry struct {
	ID           int64
	Created      int
	Updated      int
	Removed      int
	Error        string
	ReconciledAt time.Time
}
