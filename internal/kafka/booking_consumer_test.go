package kafka

import (
	"encoding/json"
	"testing"

	"ms-notifications/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockDispatcher is a mock of the notification dispatch service
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) SendAppointmentConfirmation(appointmentID string) (*models.DispatchResult, error) {
	args := m.Called(appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DispatchResult), args.Error(1)
}

func (m *MockDispatcher) SendCancellationNotification(appointmentID string, refundAmount float64) (*models.DispatchResult, error) {
	args := m.Called(appointmentID, refundAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DispatchResult), args.Error(1)
}

func TestProcessAppointmentCreated(t *testing.T) {
	event := models.AppointmentEvent{
		AppointmentID:    "appt-1",
		BookingReference: "AD-2025-0042",
		Status:           "confirmed",
	}
	eventBytes, _ := json.Marshal(event)

	mockDispatcher := new(MockDispatcher)
	mockDispatcher.On("SendAppointmentConfirmation", "appt-1").
		Return(&models.DispatchResult{Success: true}, nil)

	consumer := &BookingConsumer{dispatcher: mockDispatcher}
	err := consumer.processAppointmentCreated(eventBytes)

	assert.NoError(t, err)
	mockDispatcher.AssertExpectations(t)
}

func TestProcessAppointmentCancelled(t *testing.T) {
	event := models.AppointmentEvent{
		AppointmentID: "appt-1",
		Status:        "cancelled",
		RefundAmount:  1500,
	}
	eventBytes, _ := json.Marshal(event)

	mockDispatcher := new(MockDispatcher)
	mockDispatcher.On("SendCancellationNotification", "appt-1", 1500.0).
		Return(&models.DispatchResult{Success: true}, nil)

	consumer := &BookingConsumer{dispatcher: mockDispatcher}
	err := consumer.processAppointmentCancelled(eventBytes)

	assert.NoError(t, err)
	mockDispatcher.AssertExpectations(t)
}

func TestProcessAppointmentCreatedRejectsEmptyID(t *testing.T) {
	eventBytes, _ := json.Marshal(models.AppointmentEvent{Status: "confirmed"})

	mockDispatcher := new(MockDispatcher)
	consumer := &BookingConsumer{dispatcher: mockDispatcher}

	err := consumer.processAppointmentCreated(eventBytes)

	assert.Error(t, err)
	mockDispatcher.AssertNotCalled(t, "SendAppointmentConfirmation", mock.Anything)
}

func TestProcessAppointmentCreatedRejectsMalformedJSON(t *testing.T) {
	mockDispatcher := new(MockDispatcher)
	consumer := &BookingConsumer{dispatcher: mockDispatcher}

	err := consumer.processAppointmentCreated([]byte("not json"))

	assert.Error(t, err)
	mockDispatcher.AssertNotCalled(t, "SendAppointmentConfirmation", mock.Anything)
}

// A dispatch failure is swallowed: the event must not be retried because the
// failed attempt is already recorded in the notification log.
func TestProcessAppointmentCreatedSwallowsDispatchFailure(t *testing.T) {
	eventBytes, _ := json.Marshal(models.AppointmentEvent{AppointmentID: "appt-1"})

	mockDispatcher := new(MockDispatcher)
	mockDispatcher.On("SendAppointmentConfirmation", "appt-1").
		Return(nil, assert.AnError)

	consumer := &BookingConsumer{dispatcher: mockDispatcher}
	err := consumer.processAppointmentCreated(eventBytes)

	assert.NoError(t, err)
	mockDispatcher.AssertExpectations(t)
}
