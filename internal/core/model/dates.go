package model

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("unsupported date format")

// Zoneless layouts are read as UTC.
var joiningDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04-0700",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	time.DateOnly,
	"20060102",
}

// ParseJoiningDate accepts an ISO-8601 timestamp, with or without seconds or a
// zone designator (±hh:mm or ±hhmm), or a plain YYYY-MM-DD or YYYYMMDD date. The result is in UTC.
func ParseJoiningDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range joiningDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
