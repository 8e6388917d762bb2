package reminder

import (
	"errors"
	"testing"
	"time"

	"ms-notifications/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAppointmentSource is a mock of the appointment candidate queries
type MockAppointmentSource struct {
	mock.Mock
}

func (m *MockAppointmentSource) GetConfirmedAppointmentsBetween(fromDate, toDate string) ([]models.Appointment, error) {
	args := m.Called(fromDate, toDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockAppointmentSource) GetConfirmedAppointmentsOn(date string) ([]models.Appointment, error) {
	args := m.Called(date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

// MockLogChecker is a mock of the notification log dedup check
type MockLogChecker struct {
	mock.Mock
}

func (m *MockLogChecker) HasEntry(appointmentID string, notificationType models.NotificationType) (bool, error) {
	args := m.Called(appointmentID, notificationType)
	return args.Bool(0), args.Error(1)
}

// MockDispatcher is a mock of the notification dispatch service
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) SendAppointmentReminder(appointmentID string, hoursUntil int) (*models.DispatchResult, error) {
	args := m.Called(appointmentID, hoursUntil)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DispatchResult), args.Error(1)
}

// scanNow is a fixed mid-morning clock so window math never crosses midnight
var scanNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func appointmentAt(id string, start time.Time) models.Appointment {
	return models.Appointment{
		ID:              id,
		PatientName:     "Ayesha Khan",
		AppointmentDate: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		AppointmentTime: start.Format("15:04:05"),
		Status:          models.AppointmentStatusConfirmed,
	}
}

func newTestScanner(source *MockAppointmentSource, logStore *MockLogChecker, dispatcher *MockDispatcher) *Scanner {
	return NewScanner(source, logStore, dispatcher, time.UTC, 15*time.Minute, 7*time.Minute+30*time.Second)
}

func TestRunSendsTwoHourReminderInsideWindow(t *testing.T) {
	source := new(MockAppointmentSource)
	logStore := new(MockLogChecker)
	dispatcher := new(MockDispatcher)

	appointment := appointmentAt("appt-1", scanNow.Add(2*time.Hour))

	source.On("GetConfirmedAppointmentsBetween", "2025-03-10", "2025-03-10").
		Return([]models.Appointment{appointment}, nil)
	source.On("GetConfirmedAppointmentsOn", "2025-03-10").
		Return([]models.Appointment{appointment}, nil)
	logStore.On("HasEntry", "appt-1", models.NotificationTypeTwoHour).Return(false, nil)
	dispatcher.On("SendAppointmentReminder", "appt-1", 2).
		Return(&models.DispatchResult{Success: true}, nil)

	scanner := newTestScanner(source, logStore, dispatcher)
	summary := scanner.Run(scanNow)

	assert.Equal(t, 1, summary.TwoHourRemindersSent)
	assert.Equal(t, 0, summary.AtTimeRemindersSent)
	assert.Equal(t, 0, summary.Errors)
	assert.True(t, summary.Details.TwoHourReminders[0].Success)
	assert.Equal(t, "appt-1", summary.Details.TwoHourReminders[0].AppointmentID)
	source.AssertExpectations(t)
	logStore.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestRunSendsAtTimeReminderInsideWindow(t *testing.T) {
	source := new(MockAppointmentSource)
	logStore := new(MockLogChecker)
	dispatcher := new(MockDispatcher)

	appointment := appointmentAt("appt-2", scanNow.Add(3*time.Minute))

	source.On("GetConfirmedAppointmentsBetween", "2025-03-10", "2025-03-10").
		Return([]models.Appointment{}, nil)
	source.On("GetConfirmedAppointmentsOn", "2025-03-10").
		Return([]models.Appointment{appointment}, nil)
	logStore.On("HasEntry", "appt-2", models.NotificationTypeAtTime).Return(false, nil)
	dispatcher.On("SendAppointmentReminder", "appt-2", 0).
		Return(&models.DispatchResult{Success: true}, nil)

	scanner := newTestScanner(source, logStore, dispatcher)
	summary := scanner.Run(scanNow)

	assert.Equal(t, 0, summary.TwoHourRemindersSent)
	assert.Equal(t, 1, summary.AtTimeRemindersSent)
	dispatcher.AssertExpectations(t)
}

// The window bounds are inclusive: an appointment exactly 1h45m or 2h15m
// away is still reminded, one second outside either bound is not.
func TestTwoHourWindowBoundsAreInclusive(t *testing.T) {
	cases := []struct {
		name       string
		start      time.Time
		shouldSend bool
	}{
		{"exactly at lower bound", scanNow.Add(time.Hour + 45*time.Minute), true},
		{"one second before lower bound", scanNow.Add(time.Hour + 45*time.Minute - time.Second), false},
		{"exactly at upper bound", scanNow.Add(2*time.Hour + 15*time.Minute), true},
		{"one second after upper bound", scanNow.Add(2*time.Hour + 15*time.Minute + time.Second), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := new(MockAppointmentSource)
			logStore := new(MockLogChecker)
			dispatcher := new(MockDispatcher)

			appointment := appointmentAt("appt-3", tc.start)

			source.On("GetConfirmedAppointmentsBetween", "2025-03-10", "2025-03-10").
				Return([]models.Appointment{appointment}, nil)
			source.On("GetConfirmedAppointmentsOn", "2025-03-10").
				Return([]models.Appointment{appointment}, nil)

			if tc.shouldSend {
				logStore.On("HasEntry", "appt-3", models.NotificationTypeTwoHour).Return(false, nil)
				dispatcher.On("SendAppointmentReminder", "appt-3", 2).
					Return(&models.DispatchResult{Success: true}, nil)
			}

			scanner := newTestScanner(source, logStore, dispatcher)
			summary := scanner.Run(scanNow)

			if tc.shouldSend {
				assert.Equal(t, 1, summary.TwoHourRemindersSent)
			} else {
				assert.Equal(t, 0, summary.TwoHourRemindersSent)
				dispatcher.AssertNotCalled(t, "SendAppointmentReminder", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAtTimeWindowBoundsAreInclusive(t *testing.T) {
	tolerance := 7*time.Minute + 30*time.Second
	cases := []struct {
		name       string
		start      time.Time
		shouldSend bool
	}{
		{"exactly at lower bound", scanNow.Add(-tolerance), true},
		{"one second before lower bound", scanNow.Add(-tolerance - time.Second), false},
		{"exactly at upper bound", scanNow.Add(tolerance), true},
		{"one second after upper bound", scanNow.Add(tolerance + time.Second), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := new(MockAppointmentSource)
			logStore := new(MockLogChecker)
			dispatcher := new(MockDispatcher)

			appointment := appointmentAt("appt-4", tc.start)

			source.On("GetConfirmedAppointmentsBetween", "2025-03-10", "2025-03-10").
				Return([]models.Appointment{}, nil)
			source.On("GetConfirmedAppointmentsOn", "2025-03-10").
				Return([]models.Appointment{appointment}, nil)

			if tc.shouldSend {
				logStore.On("HasEntry", "appt-4", models.NotificationTypeAtTime).Return(false, nil)
				dispatcher.On("SendAppointmentReminder", "appt-4", 0).
					Return(&models.DispatchResult{Success: true}, nil)
			}

			scanner := newTestScanner(source, logStore, dispatcher)
			summary := scanner.Run(scanNow)

			if tc.shouldSend {
				assert.Equal(t, 1, summary.AtTimeRemindersSent)
			} else {
				assert.Equal(t, 0, summary.AtTimeRemindersSent)
			}
		})
	}
}

func TestRunSkipsAlreadyRemindedAppointment(t *testing.T) {
	source := new(MockAppointmentSource)
	logStore := new(MockLogChecker)
	dispatcher := new(MockDispatcher)

	appointment := appointmentAt("appt-5", scanNow.Add(2*time.Hour))

	source.On("GetConfirmedAppointmentsBetween", "2025-03-10", "2025-03-10").
		Return([]models.Appointment{appointment}, nil)
	source.On("GetConfirmedAppointmentsOn", "2025-03-10").
		Return([]models.Appointment{}, nil)
	logStore.On("HasEntry", "appt-5", models.NotificationTypeTwoHour).Return(true, nil)

	scanner := newTestScanner(source, logStore, dispatcher)
	summary := scanner.Run(scanNow)

	assert.Equal(t, 0, summary.TwoHourRemindersSent)
	assert.Equal(t, 0, summary.Errors)
	dispatcher.AssertNotCalled(t, "SendAppointmentReminder", mock.Anything, mock.Anything)
}

// A prior failed attempt also suppresses the resend: the dedup guard only
// asks whether any log row exists, not whether it succeeded.
func TestRunDoesNotRetryFailedAttempt(t *testing.T) {
	source := new(MockAppointmentSource)
	logStore := new(MockLogChecker)
	dispatcher := new(MockDispatcher)

	appointment := appointmentAt("appt-6", scanNow.Add(3*time.Minute))

	source.On("GetConfirmedAppointmentsBetween", "2025-03-10", "2025-03-10").
		Return([]models.Appointment{}, nil)
	source.On("GetConfirmedAppointmentsOn", "2025-03-10").
		Return([]models.Appointment{appointment}, nil)
	logStore.On("HasEntry", "appt-6", models.NotificationTypeAtTime).Return(true, nil)

	scanner := newTestScanner(source, logStore, dispatcher)
	summary := scanner.Run(scanNow)

	assert.Equal(t, 0, summary.AtTimeRemindersSent)
	dispatcher.AssertNotCalled(t, "SendAppointmentReminder", mock.Anything, mock.Anything)
}

func TestRunRecordsDispatchFailureInSummary(t *testing.T) {
	source := new(MockAppointmentSource)
	logStore := new(MockLogChecker)
	dispatcher := new(MockDispatcher)

	appointment := appointmentAt("appt-7", scanNow.Add(2*time.Hour))

	source.On("GetConfirmedAppointmentsBetween", "2025-03-10", "2025-03-10").
		Return([]models.Appointment{appointment}, nil)
	source.On("GetConfirmedAppointmentsOn", "2025-03-10").
		Return([]models.Appointment{}, nil)
	logStore.On("HasEntry", "appt-7", models.NotificationTypeTwoHour).Return(false, nil)
	dispatcher.On("SendAppointmentReminder", "appt-7", 2).
		Return(nil, errors.New("appointment not found"))

	scanner := newTestScanner(source, logStore, dispatcher)
	summary := scanner.Run(scanNow)

	// The attempt is still counted, the outcome is just unsuccessful
	assert.Equal(t, 1, summary.TwoHourRemindersSent)
	assert.Equal(t, 1, summary.Errors)
	assert.False(t, summary.Details.TwoHourReminders[0].Success)
	assert.Equal(t, "dispatch", summary.Details.Errors[0].Type)
}

// A failed upcoming-appointments query must not prevent the at-time part of
// the scan from running.
func TestRunFetchErrorDoesNotAbortOtherCategory(t *testing.T) {
	source := new(MockAppointmentSource)
	logStore := new(MockLogChecker)
	dispatcher := new(MockDispatcher)

	appointment := appointmentAt("appt-8", scanNow)

	source.On("GetConfirmedAppointmentsBetween", "2025-03-10", "2025-03-10").
		Return(nil, errors.New("connection refused"))
	source.On("GetConfirmedAppointmentsOn", "2025-03-10").
		Return([]models.Appointment{appointment}, nil)
	logStore.On("HasEntry", "appt-8", models.NotificationTypeAtTime).Return(false, nil)
	dispatcher.On("SendAppointmentReminder", "appt-8", 0).
		Return(&models.DispatchResult{Success: true}, nil)

	scanner := newTestScanner(source, logStore, dispatcher)
	summary := scanner.Run(scanNow)

	assert.Equal(t, 0, summary.TwoHourRemindersSent)
	assert.Equal(t, 1, summary.AtTimeRemindersSent)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, "fetch_upcoming", summary.Details.Errors[0].Type)
}

func TestRunSkipsAppointmentWithUnparsableTime(t *testing.T) {
	source := new(MockAppointmentSource)
	logStore := new(MockLogChecker)
	dispatcher := new(MockDispatcher)

	broken := appointmentAt("appt-9", scanNow.Add(2*time.Hour))
	broken.AppointmentTime = "not-a-time"

	source.On("GetConfirmedAppointmentsBetween", "2025-03-10", "2025-03-10").
		Return([]models.Appointment{broken}, nil)
	source.On("GetConfirmedAppointmentsOn", "2025-03-10").
		Return([]models.Appointment{}, nil)

	scanner := newTestScanner(source, logStore, dispatcher)
	summary := scanner.Run(scanNow)

	assert.Equal(t, 0, summary.TwoHourRemindersSent)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, "parse_time", summary.Details.Errors[0].Type)
	dispatcher.AssertNotCalled(t, "SendAppointmentReminder", mock.Anything, mock.Anything)
}

func TestRunDedupCheckErrorSkipsAppointment(t *testing.T) {
	source := new(MockAppointmentSource)
	logStore := new(MockLogChecker)
	dispatcher := new(MockDispatcher)

	appointment := appointmentAt("appt-10", scanNow.Add(2*time.Hour))

	source.On("GetConfirmedAppointmentsBetween", "2025-03-10", "2025-03-10").
		Return([]models.Appointment{appointment}, nil)
	source.On("GetConfirmedAppointmentsOn", "2025-03-10").
		Return([]models.Appointment{}, nil)
	logStore.On("HasEntry", "appt-10", models.NotificationTypeTwoHour).
		Return(false, errors.New("query timeout"))

	scanner := newTestScanner(source, logStore, dispatcher)
	summary := scanner.Run(scanNow)

	assert.Equal(t, 0, summary.TwoHourRemindersSent)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, "dedup_check", summary.Details.Errors[0].Type)
	dispatcher.AssertNotCalled(t, "SendAppointmentReminder", mock.Anything, mock.Anything)
}
