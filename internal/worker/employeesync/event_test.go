package employeesync

import (
	"errors"
	"testing"
)

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	ev, err := DecodeEvent("employee-created", "m-1", []byte(`{"data": {"employee_id": 9007199254740993, "email": "a@b.c"}, "extra": 1}`))
	if err != nil {
		t.Fatalf("DecodeEvent returned error: %v", err)
	}
	id, ok := ev.EmployeeID()
	if !ok || id != 9007199254740993 {
		t.Fatalf("large ids must not lose precision, got %d", id)
	}
	if ev.Topic != "employee-created" || ev.MessageID != "m-1" {
		t.Fatalf("unexpected event metadata %+v", ev)
	}
}

func TestDecodeEvent_Malformed(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`not json`, `[]`, `null`, `{"data": "text"}`, `{"data": [1, 2]}`} {
		if _, err := DecodeEvent("employee-created", "m", []byte(body)); !errors.Is(err, ErrMalformedEvent) {
			t.Fatalf("DecodeEvent(%q) expected ErrMalformedEvent, got %v", body, err)
		}
	}
}

func TestEventEmployeeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		body string
		want int64
		ok   bool
	}{
		{`{"data": {"employee_id": 42}}`, 42, true},
		{`{"data": {"employee_id": "42"}}`, 42, true},
		{`{"data": {"employee_id": 42.0}}`, 42, true},
		{`{"data": {"employee_id": 42.5}}`, 0, false},
		{`{"data": {"employee_id": -1}}`, 0, false},
		{`{"data": {"employee_id": null}}`, 0, false},
		{`{"data": {"employee_id": true}}`, 0, false},
		{`{"data": null}`, 0, false},
	}
	for _, tc := range tests {
		ev, err := DecodeEvent("t", "m", []byte(tc.body))
		if err != nil {
			t.Fatalf("DecodeEvent(%q) returned error: %v", tc.body, err)
		}
		got, ok := ev.EmployeeID()
		if got != tc.want || ok != tc.ok {
			t.Fatalf("EmployeeID(%s) = %d, %v; want %d, %v", tc.body, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPayloadAccessors(t *testing.T) {
	t.Parallel()

	ev, err := DecodeEvent("t", "m", []byte(`{"data": {"role": null, "team": "", "job_title": "Dev", "manager_id": "7", "updated_fields": {"job_title": "Lead"}}}`))
	if err != nil {
		t.Fatalf("DecodeEvent returned error: %v", err)
	}
	d := ev.Data

	if got := d.strOr("role", "employee"); got != "employee" {
		t.Fatalf("null must fall back to default, got %q", got)
	}
	if got := d.strOr("missing", "x"); got != "x" {
		t.Fatalf("absent must fall back to default, got %q", got)
	}
	if d.strPtr("team") != nil {
		t.Fatalf("empty string must be absent")
	}
	if m := d.int64Ptr("manager_id"); m == nil || *m != 7 {
		t.Fatalf("numeric string must parse, got %v", m)
	}
	if got := d.merged(ev.UpdatedFields()).str("job_title"); got != "Lead" {
		t.Fatalf("change set must override top-level data, got %q", got)
	}
	if d.str("job_title") != "Dev" {
		t.Fatalf("merged must not mutate the original")
	}
}
