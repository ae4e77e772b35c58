package dto

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout renders instants as ISO-8601 UTC with microsecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Timestamp wraps time.Time so payloads always serialize in TimestampLayout.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// NewNullableTimestamp returns nil for the zero time.
func NewNullableTimestamp(t time.Time) *Timestamp {
	if t.IsZero() {
		return nil
	}
	ts := NewTimestamp(t)
	return &ts
}

func (ts Timestamp) String() string {
	return ts.Time.UTC().Format(TimestampLayout)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ts.String() + `"`), nil
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		ts.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return fmt.Errorf("dto.Timestamp: %w", err)
	}
	ts.Time = parsed.UTC()
	return nil
}
