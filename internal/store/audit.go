package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditEntry represents one recorded session action.
type AuditEntry struct {
	ID         string                 `json:"id"`
	CaseNumber string                 `json:"case_number"`
	SessionID  string                 `json:"session_id,omitempty"`
	Action     string                 `json:"action"`
	Actor      string                 `json:"actor"`   // "client", "cli", ...
	Details    map[string]interface{} `json:"details"` // action-specific data
	Timestamp  time.Time              `json:"timestamp"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AddAuditEntry adds an audit entry to the database
func (s *Store) AddAuditEntry(ctx context.Context, entry AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.Details == nil {
		entry.Details = map[string]interface{}{}
	}
	entry.CreatedAt = time.Now()

	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `INSERT INTO audit_entries (
		id, case_number, session_id, action, actor, details, timestamp, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		entry.ID, entry.CaseNumber, entry.SessionID, entry.Action, entry.Actor,
		string(detailsJSON), entry.Timestamp.UnixNano(), entry.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// GetAuditEntries retrieves entries for a case, newest first. limit <= 0
// returns everything.
func (s *Store) GetAuditEntries(ctx context.Context, caseNumber string, limit int) ([]AuditEntry, error) {
	query := `SELECT id, case_number, session_id, action, actor, details, timestamp, created_at
		FROM audit_entries WHERE case_number = ? ORDER BY timestamp DESC, rowid DESC`
	args := []interface{}{caseNumber}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryEntries(ctx, query, args...)
}

// RecentActions retrieves the newest entries across all cases.
func (s *Store) RecentActions(ctx context.Context, limit int) ([]AuditEntry, error) {
	query := `SELECT id, case_number, session_id, action, actor, details, timestamp, created_at
		FROM audit_entries ORDER BY timestamp DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryEntries(ctx, query, args...)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...interface{}) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		var sessionID *string
		var detailsJSON string
		var timestamp, createdAt int64

		err := rows.Scan(&entry.ID, &entry.CaseNumber, &sessionID, &entry.Action,
			&entry.Actor, &detailsJSON, &timestamp, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.Timestamp = time.Unix(0, timestamp)
		entry.CreatedAt = time.Unix(0, createdAt)
		if sessionID != nil {
			entry.SessionID = *sessionID
		}

		if err := json.Unmarshal([]byte(detailsJSON), &entry.Details); err != nil {
			// If unmarshaling fails, keep the raw text
			entry.Details = map[string]interface{}{"raw": detailsJSON}
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}

// LogSessionAction logs a session-scoped action.
func (s *Store) LogSessionAction(ctx context.Context, caseNumber, sessionID, action, actor string, details map[string]interface{}) error {
	return s.AddAuditEntry(ctx, AuditEntry{
		CaseNumber: caseNumber,
		SessionID:  sessionID,
		Action:     action,
		Actor:      actor,
		Details:    details,
	})
}
