package models

// SQSScanMessageBody is the trigger payload delivered by the EventBridge
// schedule to the reminder scan queue.
type SQSScanMessageBody struct {
	Action string `json:"action"` // always "SCAN_REMINDERS"
}

const ScanActionReminders = "SCAN_REMINDERS"

// AppointmentEvent is the booking lifecycle event consumed from Kafka.
// The booking service publishes it after the appointment row is committed,
// so notification failures can never roll back a booking.
type AppointmentEvent struct {
	AppointmentID    string  `json:"appointmentId"`
	BookingReference string  `json:"bookingReference,omitempty"`
	Status           string  `json:"status"`
	RefundAmount     float64 `json:"refundAmount,omitempty"`
}
