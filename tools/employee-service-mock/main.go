package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"attendance.service/internal/adapters/employeeapi"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Serves the internal endpoints of the employee-management service for local runs
// and the load test. Employees 1..MOCK_EMPLOYEES exist and are active.

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	count := 5000
	if v, err := strconv.Atoi(os.Getenv("MOCK_EMPLOYEES")); err == nil && v > 0 {
		count = v
	}

	r := mux.NewRouter()
	internal := r.PathPrefix("/api/v1/employees/internal").Subrouter()

	internal.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 100
		}
		out := []employeeapi.RemoteEmployee{}
		for id := offset + 1; id <= count && len(out) < limit; id++ {
			out = append(out, mockEmployee(int64(id)))
		}
		writeJSON(w, out)
	}).Methods(http.MethodGet)

	internal.HandleFunc("/by-email/{email}", func(w http.ResponseWriter, r *http.Request) {
		var id int64
		if _, err := fmt.Sscanf(strings.ToLower(mux.Vars(r)["email"]), "employee%d@company.com", &id); err != nil || id < 1 || id > int64(count) {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, mockEmployee(id))
	}).Methods(http.MethodGet)

	internal.HandleFunc("/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil || id < 1 || id > int64(count) {
			http.NotFound(w, r)
			return
		}
		log.Debug().Int64("employee_id", id).Msg("Served employee")
		writeJSON(w, mockEmployee(id))
	}).Methods(http.MethodGet)

	log.Info().Int("employees", count).Msg("Employee service mock starting on port 8001...")
	if err := http.ListenAndServe(":8001", r); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}

func mockEmployee(id int64) employeeapi.RemoteEmployee {
	dept := "Engineering"
	joined := "2024-01-15"
	return employeeapi.RemoteEmployee{
		ID:             id,
		Email:          fmt.Sprintf("employee%d@company.com", id),
		FirstName:      "Employee",
		LastName:       strconv.FormatInt(id, 10),
		Role:           "employee",
		JobTitle:       "Engineer",
		Department:     &dept,
		EmploymentType: "permanent",
		Status:         "active",
		JoiningDate:    &joined,
	}
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}
