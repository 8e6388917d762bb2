package templates

import "fmt"

// ConfirmationSMSData carries the fields rendered into the confirmation SMS
type ConfirmationSMSData struct {
	DoctorName       string
	AppointmentDate  string
	AppointmentTime  string
	ClinicName       string
	BookingReference string
}

// AppointmentConfirmationSMS builds the single-line booking confirmation text
func AppointmentConfirmationSMS(data ConfirmationSMSData) string {
	return fmt.Sprintf("ApnaDoctor: Appointment confirmed with Dr. %s on %s at %s. Clinic: %s. Ref: %s",
		data.DoctorName, data.AppointmentDate, data.AppointmentTime, data.ClinicName, data.BookingReference)
}

// ReminderSMSData carries the fields rendered into reminder texts
type ReminderSMSData struct {
	DoctorName      string
	AppointmentTime string
	ClinicAddress   string
}

// AppointmentReminderSMS builds a reminder text, branching on hoursUntil the
// same way the reminder email does.
func AppointmentReminderSMS(data ReminderSMSData, hoursUntil int) string {
	if hoursUntil == 0 {
		return fmt.Sprintf("ApnaDoctor: Your appointment with Dr. %s is NOW at %s. Location: %s",
			data.DoctorName, data.AppointmentTime, data.ClinicAddress)
	}
	return fmt.Sprintf("ApnaDoctor: Reminder - Your appointment with Dr. %s is in %d hours (%s). Please arrive 10 min early.",
		data.DoctorName, hoursUntil, data.AppointmentTime)
}

// CancellationSMSData carries the fields rendered into the cancellation text
type CancellationSMSData struct {
	DoctorName   string
	RefundAmount float64
}

// AppointmentCancelledSMS builds the cancellation text including the refund amount
func AppointmentCancelledSMS(data CancellationSMSData) string {
	return fmt.Sprintf("ApnaDoctor: Your appointment with Dr. %s has been cancelled. Refund of PKR %.0f will be processed in 3-5 days.",
		data.DoctorName, data.RefundAmount)
}
