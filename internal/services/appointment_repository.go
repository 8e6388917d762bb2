package services

import (
	"database/sql"
	"errors"
	"fmt"

	"ms-notifications/internal/models"
)

// ErrAppointmentNotFound is returned when an appointment ID does not resolve to a row
var ErrAppointmentNotFound = errors.New("appointment not found")

// AppointmentRepository reads appointments and their doctors. Appointments are
// owned by the booking workflow; this service never writes them.
type AppointmentRepository struct {
	DB *sql.DB
}

func NewAppointmentRepository(db *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{DB: db}
}

const appointmentColumns = `
	a.id, a.doctor_id, a.user_id, a.appointment_date, a.appointment_time::text,
	a.status, a.booking_reference, a.patient_name, a.patient_phone, a.patient_email,
	a.chief_complaint, a.consultation_fee, a.created_at`

// GetAppointmentWithDoctor loads an appointment joined with its doctor's
// name, specialization and clinic details.
func (r *AppointmentRepository) GetAppointmentWithDoctor(appointmentID string) (*models.AppointmentDetails, error) {
	query := `
        SELECT` + appointmentColumns + `,
               d.full_name, d.specialization, d.clinic_name, d.clinic_address
        FROM appointments a
        JOIN doctors d ON d.id = a.doctor_id
        WHERE a.id = $1
    `

	var details models.AppointmentDetails
	err := r.DB.QueryRow(query, appointmentID).Scan(
		&details.ID,
		&details.DoctorID,
		&details.UserID,
		&details.AppointmentDate,
		&details.AppointmentTime,
		&details.Status,
		&details.BookingReference,
		&details.PatientName,
		&details.PatientPhone,
		&details.PatientEmail,
		&details.ChiefComplaint,
		&details.ConsultationFee,
		&details.CreatedAt,
		&details.Doctor.FullName,
		&details.Doctor.Specialization,
		&details.Doctor.ClinicName,
		&details.Doctor.ClinicAddress,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("error getting appointment %s: %w", appointmentID, err)
	}

	return &details, nil
}

// GetConfirmedAppointmentsBetween returns confirmed appointments whose date
// falls in [fromDate, toDate] inclusive. Dates are "2006-01-02" strings. This
// is a coarse date-level pre-filter; the scanner applies the precise
// timestamp window afterwards.
func (r *AppointmentRepository) GetConfirmedAppointmentsBetween(fromDate, toDate string) ([]models.Appointment, error) {
	query := `
        SELECT` + appointmentColumns + `
        FROM appointments a
        WHERE a.status = $1
          AND a.appointment_date >= $2
          AND a.appointment_date <= $3
    `

	rows, err := r.DB.Query(query, models.AppointmentStatusConfirmed, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("error fetching appointments between %s and %s: %w", fromDate, toDate, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetConfirmedAppointmentsOn returns confirmed appointments on a single date
func (r *AppointmentRepository) GetConfirmedAppointmentsOn(date string) ([]models.Appointment, error) {
	query := `
        SELECT` + appointmentColumns + `
        FROM appointments a
        WHERE a.status = $1
          AND a.appointment_date = $2
    `

	rows, err := r.DB.Query(query, models.AppointmentStatusConfirmed, date)
	if err != nil {
		return nil, fmt.Errorf("error fetching appointments on %s: %w", date, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

func scanAppointments(rows *sql.Rows) ([]models.Appointment, error) {
	var appointments []models.Appointment
	for rows.Next() {
		var a models.Appointment
		err := rows.Scan(
			&a.ID,
			&a.DoctorID,
			&a.UserID,
			&a.AppointmentDate,
			&a.AppointmentTime,
			&a.Status,
			&a.BookingReference,
			&a.PatientName,
			&a.PatientPhone,
			&a.PatientEmail,
			&a.ChiefComplaint,
			&a.ConsultationFee,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}
	return appointments, nil
}
