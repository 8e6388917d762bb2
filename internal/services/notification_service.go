package services

import (
	"log"
	"time"

	"ms-notifications/internal/models"
	"ms-notifications/internal/templates"
)

// AppointmentReader loads the appointment aggregate for dispatch
type AppointmentReader interface {
	GetAppointmentWithDoctor(appointmentID string) (*models.AppointmentDetails, error)
}

// NotificationLogWriter appends audit log rows
type NotificationLogWriter interface {
	Insert(entry *models.NotificationLogEntry) (bool, error)
}

// EmailSender is the outbound email channel
type EmailSender interface {
	Send(to, subject, html, text string) models.ChannelResult
}

// SMSSender is the outbound SMS channel
type SMSSender interface {
	Send(to, message string) models.ChannelResult
}

// NotificationService orchestrates notification dispatch: it loads the
// appointment aggregate, builds channel content, invokes the channel senders
// and writes exactly one audit log entry per dispatch attempt. The log entry
// is written regardless of send outcome; its existence is what the reminder
// scanner's dedup guard relies on.
type NotificationService struct {
	appointments AppointmentReader
	logStore     NotificationLogWriter
	email        EmailSender
	sms          SMSSender
	location     *time.Location
}

func NewNotificationService(appointments AppointmentReader, logStore NotificationLogWriter,
	email EmailSender, sms SMSSender, location *time.Location) *NotificationService {
	return &NotificationService{
		appointments: appointments,
		logStore:     logStore,
		email:        email,
		sms:          sms,
		location:     location,
	}
}

// SendAppointmentConfirmation emails and texts the patient after booking.
// Both channels are attempted independently; the log row is marked sent only
// when both succeeded.
func (s *NotificationService) SendAppointmentConfirmation(appointmentID string) (*models.DispatchResult, error) {
	details, err := s.appointments.GetAppointmentWithDoctor(appointmentID)
	if err != nil {
		log.Printf("Send confirmation error for appointment %s: %v", appointmentID, err)
		s.logLoadFailure(appointmentID, models.NotificationTypeConfirmation, models.ChannelEmailSMS, err)
		return &models.DispatchResult{Success: false, Error: err.Error()}, err
	}

	formattedDate := details.AppointmentDate.Format("Monday, January 2, 2006")

	emailTemplate := templates.AppointmentConfirmationEmail(templates.ConfirmationEmailData{
		PatientName:      details.PatientName,
		DoctorName:       details.Doctor.FullName,
		Specialization:   details.Doctor.Specialization,
		AppointmentDate:  formattedDate,
		AppointmentTime:  details.AppointmentTime,
		ClinicName:       details.Doctor.ClinicName,
		ClinicAddress:    details.Doctor.ClinicAddress,
		BookingReference: details.BookingReference,
		ConsultationFee:  details.ConsultationFee,
	})
	emailResult := s.email.Send(details.PatientEmail, "Appointment Confirmed - ApnaDoctor",
		emailTemplate.HTML, emailTemplate.Text)

	smsText := templates.AppointmentConfirmationSMS(templates.ConfirmationSMSData{
		DoctorName:       details.Doctor.FullName,
		AppointmentDate:  formattedDate,
		AppointmentTime:  details.AppointmentTime,
		ClinicName:       details.Doctor.ClinicName,
		BookingReference: details.BookingReference,
	})
	smsResult := s.sms.Send(details.PatientPhone, smsText)

	s.logDispatch(details, models.NotificationTypeConfirmation, models.ChannelEmailSMS, &emailResult, &smsResult)

	return &models.DispatchResult{
		Success: emailResult.Success && smsResult.Success,
		Email:   &emailResult,
		SMS:     &smsResult,
	}, nil
}

// SendAppointmentReminder sends the reminder email and SMS for an appointment
// hoursUntil hours ahead. hoursUntil 0 is recorded as an at-time reminder; any
// other value is recorded as a 2-hour reminder, matching the subject/body
// branch in the templates.
func (s *NotificationService) SendAppointmentReminder(appointmentID string, hoursUntil int) (*models.DispatchResult, error) {
	notificationType := models.NotificationTypeTwoHour
	if hoursUntil == 0 {
		notificationType = models.NotificationTypeAtTime
	}

	details, err := s.appointments.GetAppointmentWithDoctor(appointmentID)
	if err != nil {
		log.Printf("Send reminder error for appointment %s: %v", appointmentID, err)
		s.logLoadFailure(appointmentID, notificationType, models.ChannelEmailSMS, err)
		return &models.DispatchResult{Success: false, Error: err.Error()}, err
	}

	emailTemplate := templates.AppointmentReminderEmail(templates.ReminderEmailData{
		PatientName:     details.PatientName,
		DoctorName:      details.Doctor.FullName,
		AppointmentTime: details.AppointmentTime,
		ClinicName:      details.Doctor.ClinicName,
		ClinicAddress:   details.Doctor.ClinicAddress,
	}, hoursUntil)
	emailResult := s.email.Send(details.PatientEmail, templates.ReminderEmailSubject(hoursUntil),
		emailTemplate.HTML, emailTemplate.Text)

	smsText := templates.AppointmentReminderSMS(templates.ReminderSMSData{
		DoctorName:      details.Doctor.FullName,
		AppointmentTime: details.AppointmentTime,
		ClinicAddress:   details.Doctor.ClinicAddress,
	}, hoursUntil)
	smsResult := s.sms.Send(details.PatientPhone, smsText)

	s.logDispatch(details, notificationType, models.ChannelEmailSMS, &emailResult, &smsResult)

	return &models.DispatchResult{
		Success: emailResult.Success && smsResult.Success,
		Email:   &emailResult,
		SMS:     &smsResult,
	}, nil
}

// SendCancellationNotification texts the patient that the appointment was
// cancelled, including the refund amount. SMS-only, no email.
func (s *NotificationService) SendCancellationNotification(appointmentID string, refundAmount float64) (*models.DispatchResult, error) {
	details, err := s.appointments.GetAppointmentWithDoctor(appointmentID)
	if err != nil {
		log.Printf("Send cancellation error for appointment %s: %v", appointmentID, err)
		s.logLoadFailure(appointmentID, models.NotificationTypeCancellation, models.ChannelSMS, err)
		return &models.DispatchResult{Success: false, Error: err.Error()}, err
	}

	smsText := templates.AppointmentCancelledSMS(templates.CancellationSMSData{
		DoctorName:   details.Doctor.FullName,
		RefundAmount: refundAmount,
	})
	smsResult := s.sms.Send(details.PatientPhone, smsText)

	s.logDispatch(details, models.NotificationTypeCancellation, models.ChannelSMS, nil, &smsResult)

	return &models.DispatchResult{
		Success: smsResult.Success,
		SMS:     &smsResult,
	}, nil
}

// logDispatch writes the single audit row for one dispatch attempt. The row
// is marked sent only when every attempted channel succeeded; the first
// available channel error is recorded otherwise.
func (s *NotificationService) logDispatch(details *models.AppointmentDetails,
	notificationType models.NotificationType, channel models.NotificationChannel,
	emailResult, smsResult *models.ChannelResult) {

	status := models.DeliveryStatusSent
	var errorMessage *string
	if emailResult != nil && !emailResult.Success {
		status = models.DeliveryStatusFailed
		errorMessage = &emailResult.Error
	} else if smsResult != nil && !smsResult.Success {
		status = models.DeliveryStatusFailed
		errorMessage = &smsResult.Error
	}

	entry := &models.NotificationLogEntry{
		AppointmentID:    details.ID,
		NotificationType: notificationType,
		Channel:          channel,
		Status:           status,
		ErrorMessage:     errorMessage,
		SentAt:           time.Now(),
	}
	if emailResult != nil {
		email := details.PatientEmail
		entry.RecipientEmail = &email
	}
	phone := details.PatientPhone
	entry.RecipientPhone = &phone

	s.insertLogEntry(entry)
}

// logLoadFailure writes a minimal failed row when the appointment aggregate
// could not be loaded. Applied uniformly to all three operations so the audit
// log always records that a dispatch was attempted.
func (s *NotificationService) logLoadFailure(appointmentID string,
	notificationType models.NotificationType, channel models.NotificationChannel, cause error) {

	message := cause.Error()
	entry := &models.NotificationLogEntry{
		AppointmentID:    appointmentID,
		NotificationType: notificationType,
		Channel:          channel,
		Status:           models.DeliveryStatusFailed,
		ErrorMessage:     &message,
		SentAt:           time.Now(),
	}
	s.insertLogEntry(entry)
}

func (s *NotificationService) insertLogEntry(entry *models.NotificationLogEntry) {
	inserted, err := s.logStore.Insert(entry)
	if err != nil {
		log.Printf("Warning: failed to write notification log entry for appointment %s (%s): %v",
			entry.AppointmentID, entry.NotificationType, err)
		return
	}
	if !inserted {
		log.Printf("Notification log entry already exists for appointment %s (%s), treating as already sent",
			entry.AppointmentID, entry.NotificationType)
	}
}
