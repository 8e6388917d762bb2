package reminder

import (
	"log"
	"time"

	"ms-notifications/internal/models"
)

// AppointmentSource provides the candidate queries for one scan run.
// Dates are "2006-01-02" strings matching the appointment_date column.
type AppointmentSource interface {
	GetConfirmedAppointmentsBetween(fromDate, toDate string) ([]models.Appointment, error)
	GetConfirmedAppointmentsOn(date string) ([]models.Appointment, error)
}

// LogChecker answers whether a reminder of a given kind was ever attempted
type LogChecker interface {
	HasEntry(appointmentID string, notificationType models.NotificationType) (bool, error)
}

// Dispatcher sends one reminder through the notification dispatch service
type Dispatcher interface {
	SendAppointmentReminder(appointmentID string, hoursUntil int) (*models.DispatchResult, error)
}

// Scanner identifies confirmed appointments that have entered one of two
// reminder windows and ensures at most one reminder dispatch per window per
// appointment. One Run call handles one trigger invocation.
type Scanner struct {
	appointments     AppointmentSource
	logStore         LogChecker
	dispatcher       Dispatcher
	location         *time.Location
	twoHourTolerance time.Duration
	atTimeTolerance  time.Duration
}

func NewScanner(appointments AppointmentSource, logStore LogChecker, dispatcher Dispatcher,
	location *time.Location, twoHourTolerance, atTimeTolerance time.Duration) *Scanner {
	return &Scanner{
		appointments:     appointments,
		logStore:         logStore,
		dispatcher:       dispatcher,
		location:         location,
		twoHourTolerance: twoHourTolerance,
		atTimeTolerance:  atTimeTolerance,
	}
}

const twoHourLead = 2 * time.Hour

// Run executes one scan. The clock is read once; all window math uses that
// single snapshot so the windows cannot drift mid-scan. Individual fetch or
// dispatch failures are folded into the summary and never abort the run.
func (s *Scanner) Run(now time.Time) models.ScanRunSummary {
	log.Printf("Reminder scan started: %s", now.Format(time.RFC3339))
	now = now.In(s.location)

	details := models.ScanDetails{
		TwoHourReminders: []models.ReminderOutcome{},
		AtTimeReminders:  []models.ReminderOutcome{},
		Errors:           []models.ScanError{},
	}

	// Part 1: 2-hour-before reminders. Tolerance band centered on "exactly
	// two hours before the appointment".
	twoHourWindow := models.ReminderWindow{
		Start: now.Add(twoHourLead - s.twoHourTolerance),
		End:   now.Add(twoHourLead + s.twoHourTolerance),
	}

	log.Println("Checking for 2-hour reminders...")
	upcoming, err := s.appointments.GetConfirmedAppointmentsBetween(
		now.Format("2006-01-02"),
		now.Add(twoHourLead).Format("2006-01-02"),
	)
	if err != nil {
		log.Printf("Error fetching upcoming appointments: %v", err)
		details.Errors = append(details.Errors, models.ScanError{Type: "fetch_upcoming", Error: err.Error()})
		upcoming = nil
	}

	for _, appointment := range upcoming {
		outcome, processed := s.processCandidate(appointment, twoHourWindow, models.NotificationTypeTwoHour, 2, &details)
		if processed {
			details.TwoHourReminders = append(details.TwoHourReminders, outcome)
		}
	}

	// Part 2: at-time reminders. Band centered on the appointment's exact start.
	atTimeWindow := models.ReminderWindow{
		Start: now.Add(-s.atTimeTolerance),
		End:   now.Add(s.atTimeTolerance),
	}

	log.Println("Checking for at-time reminders...")
	current, err := s.appointments.GetConfirmedAppointmentsOn(now.Format("2006-01-02"))
	if err != nil {
		log.Printf("Error fetching current appointments: %v", err)
		details.Errors = append(details.Errors, models.ScanError{Type: "fetch_current", Error: err.Error()})
		current = nil
	}

	for _, appointment := range current {
		outcome, processed := s.processCandidate(appointment, atTimeWindow, models.NotificationTypeAtTime, 0, &details)
		if processed {
			details.AtTimeReminders = append(details.AtTimeReminders, outcome)
		}
	}

	summary := models.ScanRunSummary{
		Timestamp:            now.Format(time.RFC3339),
		TwoHourRemindersSent: len(details.TwoHourReminders),
		AtTimeRemindersSent:  len(details.AtTimeReminders),
		Errors:               len(details.Errors),
		Details:              details,
	}

	log.Printf("Reminder scan completed: twoHour=%d atTime=%d errors=%d",
		summary.TwoHourRemindersSent, summary.AtTimeRemindersSent, summary.Errors)

	return summary
}

// processCandidate applies the precise window filter and the dedup guard to
// one appointment, dispatching when both pass. processed is false when the
// appointment was outside the window or already reminded; the caller only
// records outcomes for actual dispatch attempts.
func (s *Scanner) processCandidate(appointment models.Appointment, window models.ReminderWindow,
	notificationType models.NotificationType, hoursUntil int,
	details *models.ScanDetails) (models.ReminderOutcome, bool) {

	startTime, err := appointment.StartTime(s.location)
	if err != nil {
		log.Printf("Skipping appointment %s with unparsable time: %v", appointment.ID, err)
		details.Errors = append(details.Errors, models.ScanError{Type: "parse_time", Error: err.Error()})
		return models.ReminderOutcome{}, false
	}

	if !window.Contains(startTime) {
		return models.ReminderOutcome{}, false
	}

	// Dedup guard: any prior log row for this (appointment, kind) suppresses
	// a repeat send, regardless of whether that attempt succeeded.
	exists, err := s.logStore.HasEntry(appointment.ID, notificationType)
	if err != nil {
		log.Printf("Error checking notification log for appointment %s: %v", appointment.ID, err)
		details.Errors = append(details.Errors, models.ScanError{Type: "dedup_check", Error: err.Error()})
		return models.ReminderOutcome{}, false
	}
	if exists {
		log.Printf("Already sent %s for: %s", notificationType, appointment.PatientName)
		return models.ReminderOutcome{}, false
	}

	log.Printf("Sending %s for: %s", notificationType, appointment.PatientName)
	result, err := s.dispatcher.SendAppointmentReminder(appointment.ID, hoursUntil)
	if err != nil {
		details.Errors = append(details.Errors, models.ScanError{Type: "dispatch", Error: err.Error()})
		return models.ReminderOutcome{
			AppointmentID: appointment.ID,
			PatientName:   appointment.PatientName,
			Success:       false,
		}, true
	}

	return models.ReminderOutcome{
		AppointmentID: appointment.ID,
		PatientName:   appointment.PatientName,
		Success:       result.Success,
	}, true
}
