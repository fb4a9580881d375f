// Package ledger provides an append-only history of routed commands.
package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/lightcmd/internal/eventbus"
)

// Source identifies the endpoint a command arrived through.
type Source string

const (
	SourceControl Source = "control"
	SourceParse   Source = "parse"
	SourceExecute Source = "execute"
)

// Entry represents a single command in the ledger
type Entry struct {
	ID        int64          `json:"id"`
	RequestID string         `json:"request_id,omitempty"`
	Source    Source         `json:"source"`
	Intent    string         `json:"intent,omitempty"`
	Status    int            `json:"status"`
	Payload   map[string]any `json:"payload,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Ledger provides append-only command logging
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new Ledger using the provided database connection
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// Append adds a new entry to the ledger. A zero Timestamp is set to now.
func (l *Ledger) Append(e Entry) error {
	var payloadJSON []byte
	var err error

	if e.Payload != nil {
		payloadJSON, err = json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	ts := e.Timestamp
	if ts.IsZero() {
		ts = l.now()
	}

	_, err = l.db.Exec(
		`INSERT INTO command_ledger (request_id, source, intent, status, payload, error, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, string(e.Source), e.Intent, e.Status, string(payloadJSON), e.Error, ts.UTC().Unix(),
	)
	return err
}

// Recent returns up to limit entries, newest first.
func (l *Ledger) Recent(limit int) ([]*Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, request_id, source, intent, status, payload, error, timestamp
		FROM command_ledger
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// DeleteOlderThan removes entries older than the specified duration (retention policy)
func (l *Ledger) DeleteOlderThan(retention time.Duration) (int64, error) {
	cutoff := l.now().Add(-retention).UTC().Unix()
	result, err := l.db.Exec(`DELETE FROM command_ledger WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Subscribe records every command event published on the bus.
func (l *Ledger) Subscribe(bus *eventbus.Bus) {
	bus.Subscribe(eventbus.EventTypeCommand, func(ev eventbus.Event) {
		entry := EntryFromEvent(ev)
		if err := l.Append(entry); err != nil {
			log.Error().Err(err).Str("request_id", entry.RequestID).Msg("Failed to append command to ledger")
		}
	})
}

// CommandEvent builds the bus event for a routed command.
func CommandEvent(e Entry) eventbus.Event {
	return eventbus.Event{
		Type: eventbus.EventTypeCommand,
		Data: map[string]any{
			"request_id": e.RequestID,
			"source":     string(e.Source),
			"intent":     e.Intent,
			"status":     e.Status,
			"payload":    e.Payload,
			"error":      e.Error,
			"timestamp":  e.Timestamp,
		},
	}
}

// EntryFromEvent is the inverse of CommandEvent.
func EntryFromEvent(ev eventbus.Event) Entry {
	var e Entry
	e.RequestID, _ = ev.Data["request_id"].(string)
	if s, ok := ev.Data["source"].(string); ok {
		e.Source = Source(s)
	}
	e.Intent, _ = ev.Data["intent"].(string)
	e.Status, _ = ev.Data["status"].(int)
	e.Payload, _ = ev.Data["payload"].(map[string]any)
	e.Error, _ = ev.Data["error"].(string)
	e.Timestamp, _ = ev.Data["timestamp"].(time.Time)
	return e
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	entries := []*Entry{}
	for rows.Next() {
		var entry Entry
		var requestID, source, intent, payloadStr, errStr sql.NullString
		var timestamp int64

		err := rows.Scan(
			&entry.ID, &requestID, &source, &intent, &entry.Status, &payloadStr, &errStr, &timestamp,
		)
		if err != nil {
			return nil, err
		}

		entry.Timestamp = time.Unix(timestamp, 0).UTC()
		entry.RequestID = requestID.String
		entry.Source = Source(source.String)
		entry.Intent = intent.String
		entry.Error = errStr.String

		if payloadStr.Valid && payloadStr.String != "" {
			entry.Payload = make(map[string]any)
			if err := json.Unmarshal([]byte(payloadStr.String), &entry.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
