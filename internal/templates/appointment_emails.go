package templates

import (
	"fmt"
	"time"
)

// EmailTemplate holds the HTML document and its plaintext fallback
type EmailTemplate struct {
	HTML string
	Text string
}

// ConfirmationEmailData carries the appointment fields rendered into the
// confirmation email
type ConfirmationEmailData struct {
	PatientName      string
	DoctorName       string
	Specialization   string
	AppointmentDate  string // pre-formatted, e.g. "Monday, January 2, 2006"
	AppointmentTime  string
	ClinicName       string
	ClinicAddress    string
	BookingReference string
	ConsultationFee  float64
}

// AppointmentConfirmationEmail builds the booking confirmation email.
// Pure function, no I/O, safe to call concurrently.
func AppointmentConfirmationEmail(data ConfirmationEmailData) EmailTemplate {
	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Appointment Confirmation</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f3f4f6;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color: #f3f4f6; padding: 20px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" style="background-color: #ffffff; border-radius: 8px; overflow: hidden;">
          <tr>
            <td style="background-color: #2563eb; padding: 30px; text-align: center;">
              <h1 style="margin: 0; color: #ffffff; font-size: 28px;">ApnaDoctor</h1>
              <p style="margin: 10px 0 0 0; color: #e0e7ff; font-size: 14px;">Your Health, Our Priority</p>
            </td>
          </tr>
          <tr>
            <td style="padding: 30px; text-align: center;">
              <h2 style="margin: 0 0 10px 0; color: #111827; font-size: 24px;">Appointment Confirmed!</h2>
              <p style="margin: 0; color: #6b7280; font-size: 14px;">Your booking has been confirmed successfully</p>
            </td>
          </tr>
          <tr>
            <td style="padding: 0 30px 30px 30px;">
              <table width="100%%" cellpadding="0" cellspacing="0" style="background-color: #f9fafb; border-radius: 8px; padding: 20px;">
                <tr>
                  <td style="padding: 10px 0; border-bottom: 1px solid #e5e7eb;">
                    <span style="color: #6b7280; font-size: 14px;">Booking Reference</span><br>
                    <strong style="color: #111827; font-size: 18px;">%s</strong>
                  </td>
                </tr>
                <tr>
                  <td style="padding: 15px 0; border-bottom: 1px solid #e5e7eb;">
                    <span style="color: #6b7280; font-size: 14px;">Doctor</span><br>
                    <strong style="color: #111827; font-size: 16px;">Dr. %s</strong><br>
                    <span style="color: #6b7280; font-size: 13px;">%s</span>
                  </td>
                </tr>
                <tr>
                  <td style="padding: 15px 0; border-bottom: 1px solid #e5e7eb;">
                    <span style="color: #6b7280; font-size: 14px;">Date &amp; Time</span><br>
                    <strong style="color: #111827; font-size: 16px;">%s</strong><br>
                    <strong style="color: #2563eb; font-size: 16px;">%s</strong>
                  </td>
                </tr>
                <tr>
                  <td style="padding: 15px 0; border-bottom: 1px solid #e5e7eb;">
                    <span style="color: #6b7280; font-size: 14px;">Clinic</span><br>
                    <strong style="color: #111827; font-size: 16px;">%s</strong><br>
                    <span style="color: #6b7280; font-size: 13px;">%s</span>
                  </td>
                </tr>
                <tr>
                  <td style="padding: 15px 0;">
                    <span style="color: #6b7280; font-size: 14px;">Consultation Fee</span><br>
                    <strong style="color: #16a34a; font-size: 18px;">PKR %.0f</strong>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
          <tr>
            <td style="padding: 0 30px 30px 30px;">
              <div style="background-color: #fef3c7; border-left: 4px solid #f59e0b; padding: 15px; border-radius: 4px;">
                <strong style="color: #92400e; font-size: 14px;">Important:</strong>
                <ul style="margin: 10px 0 0 0; padding-left: 20px; color: #92400e; font-size: 13px;">
                  <li>Please arrive 10 minutes early</li>
                  <li>Bring your ID and any previous medical records</li>
                  <li>You'll receive SMS reminders before your appointment</li>
                </ul>
              </div>
            </td>
          </tr>
          <tr>
            <td style="background-color: #f9fafb; padding: 20px 30px; text-align: center; border-top: 1px solid #e5e7eb;">
              <p style="margin: 0 0 10px 0; color: #6b7280; font-size: 13px;">
                Need help? Contact us at <a href="mailto:support@apnadoctor.com" style="color: #2563eb; text-decoration: none;">support@apnadoctor.com</a>
              </p>
              <p style="margin: 0; color: #9ca3af; font-size: 12px;">&copy; %d ApnaDoctor. All rights reserved.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`,
		data.BookingReference,
		data.DoctorName, data.Specialization,
		data.AppointmentDate, data.AppointmentTime,
		data.ClinicName, data.ClinicAddress,
		data.ConsultationFee,
		time.Now().Year())

	text := fmt.Sprintf(`Appointment Confirmed!

Your booking has been confirmed successfully.

Booking Reference: %s

Doctor: Dr. %s
Specialization: %s

Date & Time: %s at %s

Clinic: %s
Address: %s

Consultation Fee: PKR %.0f

Important:
- Please arrive 10 minutes early
- Bring your ID and any previous medical records
- You'll receive SMS reminders before your appointment

Need help? Contact us at support@apnadoctor.com
`,
		data.BookingReference,
		data.DoctorName, data.Specialization,
		data.AppointmentDate, data.AppointmentTime,
		data.ClinicName, data.ClinicAddress,
		data.ConsultationFee)

	return EmailTemplate{HTML: html, Text: text}
}

// ReminderEmailData carries the appointment fields rendered into reminder emails
type ReminderEmailData struct {
	PatientName     string
	DoctorName      string
	AppointmentTime string
	ClinicName      string
	ClinicAddress   string
}

// AppointmentReminderEmail builds a reminder email. The body branches on
// hoursUntil: 0 means the appointment is now, any positive count renders
// "in N hours".
func AppointmentReminderEmail(data ReminderEmailData, hoursUntil int) EmailTemplate {
	var lead string
	if hoursUntil == 0 {
		lead = "Your appointment is NOW!"
	} else {
		lead = fmt.Sprintf("This is a reminder that your appointment with Dr. %s is in %d hours.", data.DoctorName, hoursUntil)
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Appointment Reminder</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f3f4f6;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color: #f3f4f6; padding: 20px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" style="background-color: #ffffff; border-radius: 8px; overflow: hidden;">
          <tr>
            <td style="background-color: #2563eb; padding: 30px; text-align: center;">
              <h1 style="margin: 0; color: #ffffff; font-size: 28px;">Appointment Reminder</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 30px;">
              <p style="margin: 0 0 20px 0; color: #111827; font-size: 16px;">Hi %s,</p>
              <p style="margin: 0 0 20px 0; color: #111827; font-size: 16px;">%s</p>
              <table width="100%%" cellpadding="0" cellspacing="0" style="background-color: #f9fafb; border-radius: 8px; padding: 20px; margin: 20px 0;">
                <tr>
                  <td>
                    <strong style="color: #111827;">Time:</strong> %s<br>
                    <strong style="color: #111827;">Doctor:</strong> Dr. %s<br>
                    <strong style="color: #111827;">Clinic:</strong> %s<br>
                    <span style="color: #6b7280; font-size: 14px;">%s</span>
                  </td>
                </tr>
              </table>
              <p style="margin: 20px 0; color: #6b7280; font-size: 14px;">
                Please arrive 10 minutes early. If you need to reschedule, please contact us immediately.
              </p>
            </td>
          </tr>
          <tr>
            <td style="background-color: #f9fafb; padding: 20px; text-align: center;">
              <p style="margin: 0; color: #9ca3af; font-size: 12px;">&copy; %d ApnaDoctor</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`,
		data.PatientName, lead,
		data.AppointmentTime, data.DoctorName,
		data.ClinicName, data.ClinicAddress,
		time.Now().Year())

	var when string
	if hoursUntil == 0 {
		when = "NOW"
	} else {
		when = fmt.Sprintf("in %d hours", hoursUntil)
	}
	text := fmt.Sprintf("Reminder: Your appointment with Dr. %s is %s!", data.DoctorName, when)

	return EmailTemplate{HTML: html, Text: text}
}

// ReminderEmailSubject builds the subject line for a reminder email
func ReminderEmailSubject(hoursUntil int) string {
	if hoursUntil == 0 {
		return "Reminder: Appointment Now"
	}
	return fmt.Sprintf("Reminder: Appointment in %d Hours", hoursUntil)
}
