package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/boulevard/internal/db"
)

// Store provides access to journaled preview events.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new event. If e.ID is empty a UUID is generated.
func (s *Store) Log(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Elements == nil {
		e.Elements = []string{}
	}

	elements, err := json.Marshal(e.Elements)
	if err != nil {
		return fmt.Errorf("marshalling elements: %w", err)
	}

	var itemCodename, language sql.NullString
	if e.ItemCodename != "" {
		itemCodename = sql.NullString{String: e.ItemCodename, Valid: true}
	}
	if e.Language != "" {
		language = sql.NullString{String: e.Language, Valid: true}
	}

	args := []any{
		e.ID, e.SessionID, e.Page, string(e.Kind), string(e.Outcome),
		itemCodename, language, string(elements), e.Detail,
	}
	query := `
		INSERT INTO preview_events (
			id, session_id, page, kind, outcome,
			item_codename, language, elements, detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if !e.Timestamp.IsZero() {
		query = `
		INSERT INTO preview_events (
			id, session_id, page, kind, outcome,
			item_codename, language, elements, detail, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		args = append(args, e.Timestamp.UTC().Format(time.DateTime))
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting preview event: %w", err)
	}
	return nil
}

// GetByID retrieves a single event.
func (s *Store) GetByID(ctx context.Context, id string) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, session_id, page, kind, outcome,
			   item_codename, language, elements, detail
		FROM preview_events WHERE id = ?`, id)

	return scanInto(row)
}

// QueryFilter controls which events are returned by Query.
type QueryFilter struct {
	SessionID string
	Kind      Kind
	Outcome   Outcome
	Since     *time.Time
	Limit     int
	Offset    int
}

// Query returns events matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := "SELECT id, timestamp, session_id, page, kind, outcome, item_codename, language, elements, detail FROM preview_events"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying preview events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// DeleteBefore removes all events older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM preview_events WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old preview events: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Event, error) {
	var (
		e                      Event
		kind, outcome, ts      string
		elementsJSON           string
		itemCodename, language sql.NullString
	)

	err := sc.Scan(
		&e.ID, &ts, &e.SessionID, &e.Page, &kind, &outcome,
		&itemCodename, &language, &elementsJSON, &e.Detail,
	)
	if err != nil {
		return nil, err
	}

	e.Kind = Kind(kind)
	e.Outcome = Outcome(outcome)

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.Timestamp = t
	} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		e.Timestamp = t
	}

	if itemCodename.Valid {
		e.ItemCodename = itemCodename.String
	}
	if language.Valid {
		e.Language = language.String
	}

	if err := json.Unmarshal([]byte(elementsJSON), &e.Elements); err != nil || len(e.Elements) == 0 {
		e.Elements = nil
	}

	return &e, nil
}
