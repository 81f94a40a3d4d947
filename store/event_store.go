// api/store/event_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"funnelpulse/api/database"
	"funnelpulse/api/funnel"
	"funnelpulse/api/models"
)

// EventStore persists raw clickstream events in ClickHouse and serves
// immutable snapshots to the aggregation engine.
type EventStore struct {
	DB *database.ClickHouseClient
}

func NewEventStore(chClient *database.ClickHouseClient) *EventStore {
	return &EventStore{
		DB: chClient,
	}
}

func (s *EventStore) InsertEvents(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	// Column names and order must exactly match the clickstream_events table schema.
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO clickstream_events (
			event_id, session_id, user_id, timestamp, page, action, device, traffic_source, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.SessionID,
			event.UserID,
			event.Timestamp,
			event.Page,
			event.Action,
			event.Device,
			event.TrafficSource,
			string(event.Metadata),
		)
		if err != nil {
			log.Printf("Error appending event to batch (EventID: %s): %v", event.EventID, err)
		}
	}

	err = batch.Send()
	if err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Successfully inserted %d clickstream events.", len(events))
	return nil
}

// FetchEvents returns the event snapshot for one aggregation pass,
// optionally restricted to a [start, end) window. Rows that fail to scan
// are logged and skipped rather than failing the whole snapshot.
func (s *EventStore) FetchEvents(ctx context.Context, window *funnel.Window) ([]models.Event, error) {
	query := `
		SELECT event_id, session_id, user_id, timestamp, page, action, device, traffic_source, metadata
		FROM clickstream_events
	`
	var args []interface{}
	if window != nil {
		query += ` WHERE timestamp >= ? AND timestamp < ?`
		args = append(args, window.Start, window.End)
	}
	query += ` ORDER BY timestamp ASC`

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clickstream events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			event    models.Event
			ts       time.Time
			metadata string
		)
		if err := rows.Scan(
			&event.EventID,
			&event.SessionID,
			&event.UserID,
			&ts,
			&event.Page,
			&event.Action,
			&event.Device,
			&event.TrafficSource,
			&metadata,
		); err != nil {
			log.Printf("Error scanning clickstream event row: %v", err)
			continue
		}
		event.Timestamp = ts
		if metadata != "" {
			event.Metadata = json.RawMessage(metadata)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during clickstream event query: %w", err)
	}

	return events, nil
}

// CountEvents returns the event volume in a window, for report summaries.
func (s *EventStore) CountEvents(ctx context.Context, window *funnel.Window) (uint64, error) {
	query := `SELECT count() FROM clickstream_events`
	var args []interface{}
	if window != nil {
		query += ` WHERE timestamp >= ? AND timestamp < ?`
		args = append(args, window.Start, window.End)
	}

	var count uint64
	if err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count clickstream events: %w", err)
	}
	return count, nil
}
