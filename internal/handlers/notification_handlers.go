package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"ms-notifications/internal/config"
	"ms-notifications/internal/models"
)

// NotificationDispatcher is the dispatch service surface used by the direct
// dispatch endpoint.
type NotificationDispatcher interface {
	SendAppointmentConfirmation(appointmentID string) (*models.DispatchResult, error)
	SendAppointmentReminder(appointmentID string, hoursUntil int) (*models.DispatchResult, error)
	SendCancellationNotification(appointmentID string, refundAmount float64) (*models.DispatchResult, error)
}

// ChannelSender sends one raw message on a single channel, used by the
// development-only test endpoint.
type ChannelSender interface {
	Send(to, subject, html, text string) models.ChannelResult
}

// SMSChannelSender sends one raw SMS
type SMSChannelSender interface {
	Send(to, message string) models.ChannelResult
}

// LogReader reads notification audit log entries for the admin views
type LogReader interface {
	ListByAppointment(appointmentID string) ([]models.NotificationLogEntry, error)
	GetRecent(limit int) ([]models.NotificationLogEntry, error)
}

// NotificationHandler exposes the direct dispatch, test and log endpoints
type NotificationHandler struct {
	dispatcher NotificationDispatcher
	email      ChannelSender
	sms        SMSChannelSender
	logStore   LogReader
	cfg        config.Config
}

func NewNotificationHandler(dispatcher NotificationDispatcher, email ChannelSender,
	sms SMSChannelSender, logStore LogReader, cfg config.Config) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
		email:      email,
		sms:        sms,
		logStore:   logStore,
		cfg:        cfg,
	}
}

// HandleSend handles POST /v1/send for booking-path callers
func (h *NotificationHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req models.DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding dispatch request body: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if req.AppointmentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "appointmentId is required"})
		return
	}

	var result *models.DispatchResult
	var err error

	switch req.Type {
	case "confirmation":
		result, err = h.dispatcher.SendAppointmentConfirmation(req.AppointmentID)

	case "reminder":
		hoursUntil := 2
		if req.HoursUntil != nil {
			hoursUntil = *req.HoursUntil
		}
		result, err = h.dispatcher.SendAppointmentReminder(req.AppointmentID, hoursUntil)

	case "cancellation":
		result, err = h.dispatcher.SendCancellationNotification(req.AppointmentID, req.RefundAmount)

	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid notification type"})
		return
	}

	if err != nil {
		log.Printf("Dispatch error for appointment %s (%s): %v", req.AppointmentID, req.Type, err)
	}

	// The dispatch result carries the failure details; the request itself
	// succeeded, so the caller gets a 200 either way.
	writeJSON(w, http.StatusOK, result)
}

// HandleTest handles POST /v1/test, sending a raw email or SMS to verify the
// channel transports. Not available in production.
func (h *NotificationHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.IsDevelopment() {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Not available in production"})
		return
	}

	var req struct {
		Type    string `json:"type"`
		To      string `json:"to"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	switch req.Type {
	case "email":
		result := h.email.Send(req.To, "Test Email from ApnaDoctor",
			"<h1>Test Email</h1><p>"+req.Message+"</p>", req.Message)
		writeJSON(w, http.StatusOK, result)

	case "sms":
		result := h.sms.Send(req.To, req.Message)
		writeJSON(w, http.StatusOK, result)

	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid type"})
	}
}

// HandleAppointmentLog handles GET /v1/log/{appointmentId} for the admin view
func (h *NotificationHandler) HandleAppointmentLog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID := vars["appointmentId"]

	entries, err := h.logStore.ListByAppointment(appointmentID)
	if err != nil {
		log.Printf("Error listing notification log for appointment %s: %v", appointmentID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load notification log"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"appointmentId": appointmentID,
		"entries":       entries,
	})
}

// HandleRecentLog handles GET /v1/log for the admin view
func (h *NotificationHandler) HandleRecentLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.logStore.GetRecent(50)
	if err != nil {
		log.Printf("Error listing recent notification log entries: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load notification log"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}
