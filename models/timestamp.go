package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts RFC3339 and the other layouts the API has used, plus
// epoch seconds or milliseconds as digits. An empty value is the zero time.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return fromEpoch(n), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// JS Date.getTime() values are milliseconds; anything below 1e11 is seconds.
func fromEpoch(n int64) time.Time {
	if n < 1e11 && n > -1e11 {
		return time.Unix(n, 0).UTC()
	}
	return time.UnixMilli(n).UTC()
}

// Timestamp decodes whatever shape the API sends a date in. A value it cannot
// read becomes the zero time instead of failing the whole response.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if b[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(b, &n); err == nil {
			if i, err := n.Int64(); err == nil {
				t.Time = fromEpoch(i)
				return nil
			}
		}
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t.Time, _ = ParseTimestamp(s)
	return nil
}

func (o *Order) UnmarshalJSON(b []byte) error {
	type plain Order
	aux := struct {
		*plain
		CreatedAt Timestamp `json:"createdAt"`
		UpdatedAt Timestamp `json:"updatedAt"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	o.CreatedAt = aux.CreatedAt.Time
	o.UpdatedAt = aux.UpdatedAt.Time
	return nil
}
