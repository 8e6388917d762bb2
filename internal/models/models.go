package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// AppointmentStatus represents the appointment lifecycle status enum
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Scan implements the sql.Scanner interface for AppointmentStatus
func (s *AppointmentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = AppointmentStatus(v)
		return nil
	case []byte:
		*s = AppointmentStatus(v)
		return nil
	}
	return fmt.Errorf("cannot scan %T into AppointmentStatus", value)
}

// Value implements the driver.Valuer interface for AppointmentStatus
func (s AppointmentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// NotificationType represents the kind of notification recorded in the log
type NotificationType string

const (
	NotificationTypeConfirmation NotificationType = "confirmation"
	NotificationTypeTwoHour      NotificationType = "2_hour_reminder"
	NotificationTypeAtTime       NotificationType = "at_time_reminder"
	NotificationTypeCancellation NotificationType = "cancellation"
)

// Scan implements the sql.Scanner interface for NotificationType
func (t *NotificationType) Scan(value interface{}) error {
	if value == nil {
		*t = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = NotificationType(v)
		return nil
	case []byte:
		*t = NotificationType(v)
		return nil
	}
	return fmt.Errorf("cannot scan %T into NotificationType", value)
}

// Value implements the driver.Valuer interface for NotificationType
func (t NotificationType) Value() (driver.Value, error) {
	return string(t), nil
}

// NotificationChannel describes which transports a dispatch used
type NotificationChannel string

const (
	ChannelEmailSMS NotificationChannel = "email_sms"
	ChannelSMS      NotificationChannel = "sms"
)

// DeliveryStatus is the recorded outcome of a dispatch attempt
type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// Appointment represents a booked appointment slot.
// Owned by the booking workflow; this service only reads appointments.
type Appointment struct {
	ID               string            `json:"id" db:"id"`
	DoctorID         string            `json:"doctor_id" db:"doctor_id"`
	UserID           *string           `json:"user_id,omitempty" db:"user_id"` // nullable for guest bookings
	AppointmentDate  time.Time         `json:"appointment_date" db:"appointment_date"`
	AppointmentTime  string            `json:"appointment_time" db:"appointment_time"` // local time-of-day, HH:MM:SS
	Status           AppointmentStatus `json:"status" db:"status"`
	BookingReference string            `json:"booking_reference" db:"booking_reference"`
	PatientName      string            `json:"patient_name" db:"patient_name"`
	PatientPhone     string            `json:"patient_phone" db:"patient_phone"`
	PatientEmail     string            `json:"patient_email" db:"patient_email"`
	ChiefComplaint   *string           `json:"chief_complaint,omitempty" db:"chief_complaint"`
	ConsultationFee  float64           `json:"consultation_fee" db:"consultation_fee"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
}

// StartTime combines the appointment's calendar date and local time-of-day
// into a single instant in the given location.
func (a *Appointment) StartTime(loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04:05", a.AppointmentTime)
	if err != nil {
		// Some rows carry HH:MM without seconds
		t, err = time.Parse("15:04", a.AppointmentTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid appointment time %q: %w", a.AppointmentTime, err)
		}
	}
	return time.Date(
		a.AppointmentDate.Year(), a.AppointmentDate.Month(), a.AppointmentDate.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, loc,
	), nil
}

// DoctorInfo carries the doctor fields needed for notification content
type DoctorInfo struct {
	FullName       string `json:"full_name" db:"full_name"`
	Specialization string `json:"specialization" db:"specialization"`
	ClinicName     string `json:"clinic_name" db:"clinic_name"`
	ClinicAddress  string `json:"clinic_address" db:"clinic_address"`
}

// AppointmentDetails is an appointment joined with its doctor's info
type AppointmentDetails struct {
	Appointment
	Doctor DoctorInfo `json:"doctor"`
}

// NotificationLogEntry is one row of the append-only notification audit log.
// At most one row exists per (appointment, notification type); the row's
// existence is what suppresses repeat scan-triggered sends.
type NotificationLogEntry struct {
	ID               int                 `json:"id" db:"id"`
	AppointmentID    string              `json:"appointment_id" db:"appointment_id"`
	NotificationType NotificationType    `json:"notification_type" db:"notification_type"`
	Channel          NotificationChannel `json:"channel" db:"channel"`
	RecipientEmail   *string             `json:"recipient_email,omitempty" db:"recipient_email"`
	RecipientPhone   *string             `json:"recipient_phone,omitempty" db:"recipient_phone"`
	Status           DeliveryStatus      `json:"status" db:"status"`
	ErrorMessage     *string             `json:"error_message,omitempty" db:"error_message"`
	SentAt           time.Time           `json:"sent_at" db:"sent_at"`
}

// ReminderWindow is a time interval around "now" used to decide whether an
// appointment's start time is close enough to warrant a reminder.
type ReminderWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window. Both bounds are inclusive.
func (w ReminderWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
