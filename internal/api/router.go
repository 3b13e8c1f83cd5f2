package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"timecard.service/internal/api/handler"
	"timecard.service/internal/core"
	"timecard.service/internal/ports/repository"
)

// Deps collects everything the router needs.
type Deps struct {
	Timeclock *core.TimeclockService
	Payroll   *core.PayrollService
	Reports   *core.ReportService
	Costs     repository.CostRepository
	Settings  repository.SettingsRepository
}

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(deps Deps) *mux.Router {

	timeclockHandler := handler.TimeclockHandler{Service: deps.Timeclock}
	payrollHandler := handler.PayrollHandler{Service: deps.Payroll, Reports: deps.Reports}
	reportHandler := handler.ReportHandler{Service: deps.Reports}
	costHandler := handler.CostHandler{Repo: deps.Costs}
	settingsHandler := handler.SettingsHandler{Repo: deps.Settings}

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/clock", timeclockHandler.Clock).Methods(http.MethodPost)
	api.HandleFunc("/entries", timeclockHandler.ListEntries).Methods(http.MethodGet)
	api.HandleFunc("/entries/{id}", timeclockHandler.CorrectEntry).Methods(http.MethodPut)
	api.HandleFunc("/entries/{id}", timeclockHandler.DeleteEntry).Methods(http.MethodDelete)

	api.HandleFunc("/mileage", costHandler.CreateMileage).Methods(http.MethodPost)
	api.HandleFunc("/expenses", costHandler.CreateExpense).Methods(http.MethodPost)

	api.HandleFunc("/sessions", reportHandler.Sessions).Methods(http.MethodGet)
	api.HandleFunc("/reports/hours", reportHandler.Hours).Methods(http.MethodGet)
	api.HandleFunc("/reports/daily", reportHandler.Daily).Methods(http.MethodGet)
	api.HandleFunc("/reports/profitability", reportHandler.Profitability).Methods(http.MethodGet)

	api.HandleFunc("/payroll", payrollHandler.CreatePeriod).Methods(http.MethodPost)
	api.HandleFunc("/payroll", payrollHandler.ListPeriods).Methods(http.MethodGet)
	api.HandleFunc("/payroll/{id}", payrollHandler.GetPeriod).Methods(http.MethodGet)
	api.HandleFunc("/payroll/{id}", payrollHandler.DeletePeriod).Methods(http.MethodDelete)
	api.HandleFunc("/payroll/{id}/finalize", payrollHandler.Finalize).Methods(http.MethodPost)
	api.HandleFunc("/payroll/{id}/lock", payrollHandler.Lock).Methods(http.MethodPost)
	api.HandleFunc("/payroll/{id}/pay", payrollHandler.MarkPaid).Methods(http.MethodPost)
	api.HandleFunc("/payroll/{id}/reopen", payrollHandler.Reopen).Methods(http.MethodPost)
	api.HandleFunc("/payroll/{id}/items/{employeeId}", payrollHandler.EditItem).Methods(http.MethodPut)
	api.HandleFunc("/payroll/{id}/confirm", payrollHandler.Confirm).Methods(http.MethodPost)
	api.HandleFunc("/payroll/{id}/export.csv", payrollHandler.ExportCSV).Methods(http.MethodGet)

	api.HandleFunc("/settings", settingsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/settings", settingsHandler.Put).Methods(http.MethodPut)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
