// api/csvio/events.go
package csvio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"funnelpulse/api/models"
)

var eventHeader = []string{
	"event_id", "session_id", "user_id", "timestamp",
	"page", "action", "device", "traffic_source", "metadata",
}

// ReadEvents loads a clickstream snapshot from a CSV file. In lenient mode
// (strict=false, the default policy) malformed rows are logged, skipped and
// counted, since one corrupt event should not invalidate a whole report; in
// strict mode the first malformed row aborts the load.
func ReadEvents(path string, strict bool) ([]models.Event, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open clickstream file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range eventHeader {
		if _, ok := col[name]; !ok {
			return nil, 0, fmt.Errorf("clickstream file %s is missing column %q", path, name)
		}
	}

	var events []models.Event
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read row of %s: %w", path, err)
		}

		event, parseErr := parseRecord(record, col)
		if parseErr != nil {
			if strict {
				return nil, 0, parseErr
			}
			log.Printf("Skipping malformed clickstream row: %v", parseErr)
			skipped++
			continue
		}
		events = append(events, event)
	}
	return events, skipped, nil
}

func parseRecord(record []string, col map[string]int) (models.Event, error) {
	event := models.Event{
		EventID:       record[col["event_id"]],
		SessionID:     record[col["session_id"]],
		UserID:        record[col["user_id"]],
		Page:          record[col["page"]],
		Action:        record[col["action"]],
		Device:        record[col["device"]],
		TrafficSource: record[col["traffic_source"]],
	}

	ts, err := models.ParseTimestamp(record[col["timestamp"]])
	if err != nil {
		return models.Event{}, &models.MalformedEventError{
			EventID: event.EventID, Field: "timestamp", Reason: "unparseable", Err: err,
		}
	}
	event.Timestamp = ts

	if raw := record[col["metadata"]]; raw != "" {
		if !json.Valid([]byte(raw)) {
			return models.Event{}, &models.MalformedMetadataError{
				EventID: event.EventID, Reason: "not valid JSON",
			}
		}
		event.Metadata = json.RawMessage(raw)
	}
	return event, nil
}

// WriteEvents writes a full clickstream snapshot, replacing any existing file.
func WriteEvents(path string, events []models.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create clickstream file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(eventHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writeEventRows(w, events); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// AppendEvents appends a batch to an existing clickstream file, creating it
// (with a header row) when absent. Used by the simulator's continuous mode.
func AppendEvents(path string, events []models.Event) error {
	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open clickstream file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(eventHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := writeEventRows(w, events); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeEventRows(w *csv.Writer, events []models.Event) error {
	for _, e := range events {
		metadata := string(e.Metadata)
		record := []string{
			e.EventID,
			e.SessionID,
			e.UserID,
			e.Timestamp.Format(models.TimestampLayout),
			e.Page,
			e.Action,
			e.Device,
			e.TrafficSource,
			metadata,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write event %s: %w", e.EventID, err)
		}
	}
	return nil
}
