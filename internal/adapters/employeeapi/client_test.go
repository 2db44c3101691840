package employeeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attendance.service/internal/core/model"
)

const johnBody = `{"id": 1, "user_id": 100, "email": "john.doe@company.com", "first_name": "John",
"last_name": "Doe", "role": "employee", "job_title": "Software Engineer", "department": "Engineering",
"team": null, "manager_id": 5, "employment_type": "permanent", "status": "active",
"joining_date": "2024-01-15", "extra": "ignored"}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/employees/internal/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(johnBody))
	})
	mux.HandleFunc("/api/v1/employees/internal/2", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/v1/employees/internal/3", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	mux.HandleFunc("/api/v1/employees/internal/by-email/john.doe@company.com", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(johnBody))
	})
	mux.HandleFunc("/api/v1/employees/internal/list", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") != "0" || r.URL.Query().Get("limit") != "2" {
			http.Error(w, "bad paging", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[` + johnBody + `, {"id": 2, "email": "jane@company.com", "first_name": "Jane", "last_name": "Roe"}]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_VerifyEmployeeExists(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	c := NewClient(srv.URL+"/", time.Second)
	ctx := context.Background()

	ok, err := c.VerifyEmployeeExists(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("expected employee 1 to exist, got %v (%v)", ok, err)
	}

	ok, err = c.VerifyEmployeeExists(ctx, 404)
	if err != nil || ok {
		t.Fatalf("expected 404 to be a clean miss, got %v (%v)", ok, err)
	}

	ok, err = c.VerifyEmployeeExists(ctx, 3)
	if ok || !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus for 403, got %v (%v)", ok, err)
	}

	ok, err = c.VerifyEmployeeExists(ctx, 2)
	if ok || err == nil {
		t.Fatalf("expected error for 500, got %v (%v)", ok, err)
	}
}

func TestClient_GetEmployee(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	emp, err := c.GetEmployee(ctx, 1)
	if err != nil || emp == nil {
		t.Fatalf("GetEmployee returned %v (%v)", emp, err)
	}
	if emp.Email != "john.doe@company.com" || emp.UserID == nil || *emp.UserID != 100 || emp.Team != nil {
		t.Fatalf("unexpected employee %+v", emp)
	}

	emp, err = c.GetEmployee(ctx, 404)
	if err != nil || emp != nil {
		t.Fatalf("expected clean miss, got %v (%v)", emp, err)
	}
}

func TestClient_GetEmployeeByEmail(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second)

	emp, err := c.GetEmployeeByEmail(context.Background(), "john.doe@company.com")
	if err != nil || emp == nil || emp.ID != 1 {
		t.Fatalf("GetEmployeeByEmail returned %v (%v)", emp, err)
	}

	emp, err = c.GetEmployeeByEmail(context.Background(), "ghost@company.com")
	if err != nil || emp != nil {
		t.Fatalf("expected clean miss, got %v (%v)", emp, err)
	}
}

func TestClient_ListEmployees(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second)

	list, err := c.ListEmployees(context.Background(), 0, 2)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListEmployees returned %v (%v)", list, err)
	}

	_, err = c.ListEmployees(context.Background(), 5, 2)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestClient_ConnectionError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	ok, err := c.VerifyEmployeeExists(context.Background(), 1)
	if ok || err == nil {
		t.Fatalf("expected connection error, got %v (%v)", ok, err)
	}
}

func TestClient_RespectsTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 50*time.Millisecond)
	start := time.Now()
	if _, err := c.GetEmployee(context.Background(), 1); err == nil {
		t.Fatalf("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not enforced")
	}
}

func TestRemoteEmployee_RecordAndProfile(t *testing.T) {
	t.Parallel()

	joining := "2024-01-15"
	e := &RemoteEmployee{ID: 7, Email: "x@company.com", FirstName: "Ada", LastName: "Lovelace", JoiningDate: &joining}
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	rec, ok := e.Record(now)
	if !ok {
		t.Fatalf("expected record")
	}
	if rec.FullName != "Ada Lovelace" || rec.Role != model.DefaultRole || rec.EmploymentType != model.DefaultEmploymentType {
		t.Fatalf("defaults not applied: %+v", rec)
	}
	if rec.Status != model.EmployeeActive || !rec.SyncedAt.Equal(now) {
		t.Fatalf("unexpected status or sync time: %+v", rec)
	}

	p := e.Profile()
	if p.JoiningDate == nil || *p.JoiningDate != "2024-01-15T00:00:00Z" {
		t.Fatalf("joining date not normalized: %v", p.JoiningDate)
	}

	if _, ok := (&RemoteEmployee{ID: 8}).Record(now); ok {
		t.Fatalf("record without email must be rejected")
	}
}
