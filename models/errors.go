// api/models/errors.go
package models

import "fmt"

// MalformedEventError reports an event whose fields could not be parsed,
// typically a timestamp in an unknown lexical format. The caller decides
// whether to skip the event or abort the computation.
type MalformedEventError struct {
	EventID string
	Field   string
	Reason  string
	Err     error
}

func (e *MalformedEventError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed event %q: field %s: %s: %v", e.EventID, e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed event %q: field %s: %s", e.EventID, e.Field, e.Reason)
}

func (e *MalformedEventError) Unwrap() error { return e.Err }

// MalformedMetadataError reports event metadata that is present but not
// valid structured data.
type MalformedMetadataError struct {
	EventID string
	Reason  string
	Err     error
}

func (e *MalformedMetadataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed metadata on event %q: %s: %v", e.EventID, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed metadata on event %q: %s", e.EventID, e.Reason)
}

func (e *MalformedMetadataError) Unwrap() error { return e.Err }
