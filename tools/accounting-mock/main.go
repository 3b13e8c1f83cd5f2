package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// A simple struct to capture the incoming export data
type PayoutExport struct {
	PeriodID string    `json:"periodId"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Revision int       `json:"revision"`
	Items    []struct {
		EmployeeID string  `json:"employeeId"`
		Net        float64 `json:"net"`
	} `json:"items"`
}

func payoutHandler(w http.ResponseWriter, r *http.Request) {
	var export PayoutExport
	if err := json.NewDecoder(r.Body).Decode(&export); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	log.Printf("Received payout export for period %s (revision %d, %d items)", export.PeriodID, export.Revision, len(export.Items))
	w.WriteHeader(http.StatusOK)
}

func main() {
	http.HandleFunc("/", payoutHandler)
	log.Println("Accounting API mock server starting on port 8081...")
	log.Fatal(http.ListenAndServe(":8081", nil))
}
