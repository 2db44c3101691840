package employeesync

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrMalformedEvent = errors.New("malformed employee event")

// Event is one inbound lifecycle message: {"data": {"employee_id": <int>, ...}}.
// Unknown fields are kept in Data and ignored by the handlers.
type Event struct {
	Topic     string
	MessageID string
	Body      []byte
	Data      payload
}

// DecodeEvent parses a message body. Numbers are kept as json.Number so that
// employee ids survive without float rounding.
func DecodeEvent(topic, messageID string, body []byte) (Event, error) {
	ev := Event{Topic: topic, MessageID: messageID, Body: body, Data: payload{}}

	var envelope map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if envelope == nil {
		return ev, fmt.Errorf("%w: body is not an object", ErrMalformedEvent)
	}

	raw, ok := envelope["data"]
	if !ok || raw == nil {
		return ev, nil
	}
	data, ok := raw.(map[string]interface{})
	if !ok {
		return ev, fmt.Errorf("%w: data is %T, not an object", ErrMalformedEvent, raw)
	}
	ev.Data = payload(data)
	return ev, nil
}

// EmployeeID returns data.employee_id; zero, absent and non-integer values are missing.
func (e Event) EmployeeID() (int64, bool) {
	v := e.Data.int64Ptr("employee_id")
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

// UpdatedFields returns data.updated_fields, or an empty change set.
func (e Event) UpdatedFields() payload {
	raw, ok := e.Data["updated_fields"].(map[string]interface{})
	if !ok {
		return payload{}
	}
	return payload(raw)
}

// payload is a decoded JSON object with tolerant accessors.
type payload map[string]interface{}

func (p payload) has(key string) bool {
	_, ok := p[key]
	return ok
}

// str returns the string form of a string or number value, else "".
func (p payload) str(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// strOr returns def when the key is absent or null.
func (p payload) strOr(key, def string) string {
	if v, ok := p[key]; !ok || v == nil {
		return def
	}
	return p.str(key)
}

// strPtr returns nil for absent, null or empty values.
func (p payload) strPtr(key string) *string {
	s := p.str(key)
	if s == "" {
		return nil
	}
	return &s
}

// int64Ptr accepts integral numbers and numeric strings; anything else is nil.
func (p payload) int64Ptr(key string) *int64 {
	var text string
	switch v := p[key].(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return nil
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return nil
	}
	n := int64(f)
	return &n
}

// merged returns a copy of p overlaid with over.
func (p payload) merged(over payload) payload {
	out := make(payload, len(p)+len(over))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
