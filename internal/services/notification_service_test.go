package services

import (
	"errors"
	"testing"
	"time"

	"ms-notifications/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAppointmentReader is a mock of the appointment aggregate loader
type MockAppointmentReader struct {
	mock.Mock
}

func (m *MockAppointmentReader) GetAppointmentWithDoctor(appointmentID string) (*models.AppointmentDetails, error) {
	args := m.Called(appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AppointmentDetails), args.Error(1)
}

// MockNotificationLogWriter is a mock of the audit log writer
type MockNotificationLogWriter struct {
	mock.Mock
}

func (m *MockNotificationLogWriter) Insert(entry *models.NotificationLogEntry) (bool, error) {
	args := m.Called(entry)
	return args.Bool(0), args.Error(1)
}

// MockEmailSender is a mock of the email channel
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(to, subject, html, text string) models.ChannelResult {
	args := m.Called(to, subject, html, text)
	return args.Get(0).(models.ChannelResult)
}

// MockSMSSender is a mock of the SMS channel
type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) Send(to, message string) models.ChannelResult {
	args := m.Called(to, message)
	return args.Get(0).(models.ChannelResult)
}

func testAppointmentDetails() *models.AppointmentDetails {
	return &models.AppointmentDetails{
		Appointment: models.Appointment{
			ID:               "appt-1",
			DoctorID:         "doc-1",
			AppointmentDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			AppointmentTime:  "11:00:00",
			Status:           models.AppointmentStatusConfirmed,
			BookingReference: "AD-2025-0042",
			PatientName:      "Ayesha Khan",
			PatientPhone:     "03001234567",
			PatientEmail:     "ayesha@example.com",
			ConsultationFee:  1500,
		},
		Doctor: models.DoctorInfo{
			FullName:       "Imran Siddiqui",
			Specialization: "Cardiologist",
			ClinicName:     "City Care Clinic",
			ClinicAddress:  "12-B Main Boulevard, Lahore",
		},
	}
}

func newTestNotificationService(appointments *MockAppointmentReader, logStore *MockNotificationLogWriter,
	email *MockEmailSender, sms *MockSMSSender) *NotificationService {
	return NewNotificationService(appointments, logStore, email, sms, time.UTC)
}

func TestSendAppointmentConfirmationSuccess(t *testing.T) {
	appointments := new(MockAppointmentReader)
	logStore := new(MockNotificationLogWriter)
	email := new(MockEmailSender)
	sms := new(MockSMSSender)

	appointments.On("GetAppointmentWithDoctor", "appt-1").Return(testAppointmentDetails(), nil)
	email.On("Send", "ayesha@example.com", "Appointment Confirmed - ApnaDoctor", mock.Anything, mock.Anything).
		Return(models.ChannelResult{Success: true, ID: "email-1"})
	sms.On("Send", "03001234567", mock.Anything).
		Return(models.ChannelResult{Success: true, ID: "SM123"})
	logStore.On("Insert", mock.MatchedBy(func(entry *models.NotificationLogEntry) bool {
		return entry.AppointmentID == "appt-1" &&
			entry.NotificationType == models.NotificationTypeConfirmation &&
			entry.Channel == models.ChannelEmailSMS &&
			entry.Status == models.DeliveryStatusSent &&
			entry.ErrorMessage == nil
	})).Return(true, nil)

	service := newTestNotificationService(appointments, logStore, email, sms)
	result, err := service.SendAppointmentConfirmation("appt-1")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Email.Success)
	assert.True(t, result.SMS.Success)
	logStore.AssertExpectations(t)
}

// One channel failing marks the whole dispatch failed in the log, but the
// other channel is still attempted.
func TestSendAppointmentConfirmationEmailFailureStillSendsSMS(t *testing.T) {
	appointments := new(MockAppointmentReader)
	logStore := new(MockNotificationLogWriter)
	email := new(MockEmailSender)
	sms := new(MockSMSSender)

	appointments.On("GetAppointmentWithDoctor", "appt-1").Return(testAppointmentDetails(), nil)
	email.On("Send", "ayesha@example.com", mock.Anything, mock.Anything, mock.Anything).
		Return(models.ChannelResult{Success: false, Error: "SMTP credentials are not configured"})
	sms.On("Send", "03001234567", mock.Anything).
		Return(models.ChannelResult{Success: true, ID: "SM123"})
	logStore.On("Insert", mock.MatchedBy(func(entry *models.NotificationLogEntry) bool {
		return entry.Status == models.DeliveryStatusFailed &&
			entry.ErrorMessage != nil &&
			*entry.ErrorMessage == "SMTP credentials are not configured"
	})).Return(true, nil)

	service := newTestNotificationService(appointments, logStore, email, sms)
	result, err := service.SendAppointmentConfirmation("appt-1")

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.False(t, result.Email.Success)
	assert.True(t, result.SMS.Success)
	sms.AssertExpectations(t)
	logStore.AssertExpectations(t)
}

func TestSendAppointmentReminderTypeFollowsHoursUntil(t *testing.T) {
	cases := []struct {
		name         string
		hoursUntil   int
		expectedType models.NotificationType
	}{
		{"zero hours is at-time", 0, models.NotificationTypeAtTime},
		{"two hours is 2-hour", 2, models.NotificationTypeTwoHour},
		{"other values default to 2-hour", 5, models.NotificationTypeTwoHour},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appointments := new(MockAppointmentReader)
			logStore := new(MockNotificationLogWriter)
			email := new(MockEmailSender)
			sms := new(MockSMSSender)

			appointments.On("GetAppointmentWithDoctor", "appt-1").Return(testAppointmentDetails(), nil)
			email.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(models.ChannelResult{Success: true})
			sms.On("Send", mock.Anything, mock.Anything).
				Return(models.ChannelResult{Success: true})
			logStore.On("Insert", mock.MatchedBy(func(entry *models.NotificationLogEntry) bool {
				return entry.NotificationType == tc.expectedType
			})).Return(true, nil)

			service := newTestNotificationService(appointments, logStore, email, sms)
			result, err := service.SendAppointmentReminder("appt-1", tc.hoursUntil)

			assert.NoError(t, err)
			assert.True(t, result.Success)
			logStore.AssertExpectations(t)
		})
	}
}

func TestSendCancellationNotificationIsSMSOnly(t *testing.T) {
	appointments := new(MockAppointmentReader)
	logStore := new(MockNotificationLogWriter)
	email := new(MockEmailSender)
	sms := new(MockSMSSender)

	appointments.On("GetAppointmentWithDoctor", "appt-1").Return(testAppointmentDetails(), nil)
	sms.On("Send", "03001234567", mock.MatchedBy(func(message string) bool {
		return len(message) > 0
	})).Return(models.ChannelResult{Success: true, ID: "SM456"})
	logStore.On("Insert", mock.MatchedBy(func(entry *models.NotificationLogEntry) bool {
		return entry.NotificationType == models.NotificationTypeCancellation &&
			entry.Channel == models.ChannelSMS &&
			entry.RecipientEmail == nil &&
			entry.Status == models.DeliveryStatusSent
	})).Return(true, nil)

	service := newTestNotificationService(appointments, logStore, email, sms)
	result, err := service.SendCancellationNotification("appt-1", 1500)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Nil(t, result.Email)
	email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	logStore.AssertExpectations(t)
}

// An unloadable appointment still produces a failed audit row, so the dedup
// guard sees the attempt and the failure is visible in the log.
func TestSendAppointmentReminderLoadFailureIsLogged(t *testing.T) {
	appointments := new(MockAppointmentReader)
	logStore := new(MockNotificationLogWriter)
	email := new(MockEmailSender)
	sms := new(MockSMSSender)

	appointments.On("GetAppointmentWithDoctor", "appt-missing").
		Return(nil, errors.New("appointment not found: appt-missing"))
	logStore.On("Insert", mock.MatchedBy(func(entry *models.NotificationLogEntry) bool {
		return entry.AppointmentID == "appt-missing" &&
			entry.NotificationType == models.NotificationTypeTwoHour &&
			entry.Status == models.DeliveryStatusFailed &&
			entry.ErrorMessage != nil
	})).Return(true, nil)

	service := newTestNotificationService(appointments, logStore, email, sms)
	result, err := service.SendAppointmentReminder("appt-missing", 2)

	assert.Error(t, err)
	assert.False(t, result.Success)
	email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sms.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	logStore.AssertExpectations(t)
}

func TestSendAppointmentConfirmationLoadFailureIsLogged(t *testing.T) {
	appointments := new(MockAppointmentReader)
	logStore := new(MockNotificationLogWriter)
	email := new(MockEmailSender)
	sms := new(MockSMSSender)

	appointments.On("GetAppointmentWithDoctor", "appt-missing").
		Return(nil, errors.New("appointment not found: appt-missing"))
	logStore.On("Insert", mock.MatchedBy(func(entry *models.NotificationLogEntry) bool {
		return entry.NotificationType == models.NotificationTypeConfirmation &&
			entry.Status == models.DeliveryStatusFailed
	})).Return(true, nil)

	service := newTestNotificationService(appointments, logStore, email, sms)
	result, err := service.SendAppointmentConfirmation("appt-missing")

	assert.Error(t, err)
	assert.False(t, result.Success)
	logStore.AssertExpectations(t)
}

// A concurrent duplicate insert is reported as not-inserted by the log store;
// the dispatch result is unaffected.
func TestSendAppointmentReminderDuplicateLogRowIsTolerated(t *testing.T) {
	appointments := new(MockAppointmentReader)
	logStore := new(MockNotificationLogWriter)
	email := new(MockEmailSender)
	sms := new(MockSMSSender)

	appointments.On("GetAppointmentWithDoctor", "appt-1").Return(testAppointmentDetails(), nil)
	email.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.ChannelResult{Success: true})
	sms.On("Send", mock.Anything, mock.Anything).
		Return(models.ChannelResult{Success: true})
	logStore.On("Insert", mock.Anything).Return(false, nil)

	service := newTestNotificationService(appointments, logStore, email, sms)
	result, err := service.SendAppointmentReminder("appt-1", 2)

	assert.NoError(t, err)
	assert.True(t, result.Success)
}
