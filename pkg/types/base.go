package types

import (
	"encoding/json"
	"time"
)

// JSON is any JSON value. Input and output payloads use it.
type JSON = any

// Time wraps time.Time with the wire format used by the Langfuse API.
//
// Values are always written as RFC 3339 with nanoseconds in UTC, so the zone
// designator is present on every timestamp. A zero Time is written as null;
// body fields hold *Time so that unset timestamps are omitted instead.
type Time struct {
	time.Time
}

// IsZero reports whether t is the zero instant.
func (t Time) IsZero() bool {
	return t.Time.IsZero()
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler. It accepts RFC 3339 strings,
// the millisecond form the server emits, and numeric Unix timestamps.
func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var ts float64
		if err := json.Unmarshal(data, &ts); err != nil {
			return err
		}
		sec := int64(ts)
		t.Time = time.Unix(sec, int64((ts-float64(sec))*1e9)).UTC()
		return nil
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return err
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
}

// Now returns the current instant in UTC.
func Now() Time {
	return Time{Time: time.Now().UTC()}
}

// TimePtr returns a pointer to t wrapped in a Time.
func TimePtr(t time.Time) *Time {
	return &Time{Time: t}
}

// TimeNow returns a pointer to the current instant.
func TimeNow() *Time {
	n := Now()
	return &n
}
