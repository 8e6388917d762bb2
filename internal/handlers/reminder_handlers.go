package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"ms-notifications/internal/config"
	"ms-notifications/internal/models"
)

// ScanRunner runs one reminder scan against a clock snapshot
type ScanRunner interface {
	Run(now time.Time) models.ScanRunSummary
}

// ReminderHandler exposes the scan trigger endpoint for external cron callers
type ReminderHandler struct {
	scanner ScanRunner
	cfg     config.Config
}

func NewReminderHandler(scanner ScanRunner, cfg config.Config) *ReminderHandler {
	return &ReminderHandler{
		scanner: scanner,
		cfg:     cfg,
	}
}

// HandleSendReminders handles GET /cron/send-reminders. The scanner already
// contains per-category and per-appointment failures in its summary; only a
// failure escaping all inner handling turns into a 500 here.
func (h *ReminderHandler) HandleSendReminders(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Cron job error: %v", rec)
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   "Internal server error",
			})
		}
	}()

	log.Printf("Cron job started: %s", time.Now().Format(time.RFC3339))

	summary := h.scanner.Run(time.Now())

	log.Printf("Cron job completed: twoHour=%d atTime=%d errors=%d",
		summary.TwoHourRemindersSent, summary.AtTimeRemindersSent, summary.Errors)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Reminders processed successfully",
		"summary": summary,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
