package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"attendance.service/internal/api/handler"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(checkIns handler.CheckInProcessor, employees handler.EmployeeLookup) *mux.Router {

	checkInHandler := handler.CheckInHandler{
		Service: checkIns,
	}
	employeeHandler := handler.EmployeeHandler{
		Service: employees,
	}

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/attendance/check-in-out", checkInHandler.CheckInOut).Methods(http.MethodPost)

	// Static paths first so "cache" and "by-email" never match {id}.
	api.HandleFunc("/employees/cache/stats", employeeHandler.CacheStats).Methods(http.MethodGet)
	api.HandleFunc("/employees/by-email/{email}", employeeHandler.GetEmployeeByEmail).Methods(http.MethodGet)
	api.HandleFunc("/employees/{id:[0-9]+}", employeeHandler.GetEmployee).Methods(http.MethodGet)
	api.HandleFunc("/employees/{id:[0-9]+}/exists", employeeHandler.Exists).Methods(http.MethodGet)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
