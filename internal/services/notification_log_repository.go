package services

import (
	"database/sql"
	"fmt"

	"ms-notifications/internal/models"
)

// NotificationLogRepository owns the append-only notification_log table.
// Rows are inserted once per dispatch attempt and never updated or deleted.
type NotificationLogRepository struct {
	DB *sql.DB
}

func NewNotificationLogRepository(db *sql.DB) *NotificationLogRepository {
	return &NotificationLogRepository{DB: db}
}

// Insert appends one log entry. The unique constraint on
// (appointment_id, notification_type) turns a concurrent duplicate into a
// no-op: inserted reports whether this call actually wrote the row, so the
// caller can treat a conflict as "already sent".
func (r *NotificationLogRepository) Insert(entry *models.NotificationLogEntry) (bool, error) {
	query := `
        INSERT INTO notification_log
            (appointment_id, notification_type, channel, recipient_email, recipient_phone, status, error_message, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (appointment_id, notification_type) DO NOTHING
    `

	result, err := r.DB.Exec(query,
		entry.AppointmentID,
		entry.NotificationType,
		entry.Channel,
		entry.RecipientEmail,
		entry.RecipientPhone,
		entry.Status,
		entry.ErrorMessage,
		entry.SentAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert notification log entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return affected > 0, nil
}

// HasEntry reports whether any log row exists for the given appointment and
// notification type, regardless of its delivery status. This is the
// scheduler's dedup guard.
func (r *NotificationLogRepository) HasEntry(appointmentID string, notificationType models.NotificationType) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM notification_log
            WHERE appointment_id = $1 AND notification_type = $2
        )
    `

	var exists bool
	err := r.DB.QueryRow(query, appointmentID, notificationType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check notification log for appointment %s: %w", appointmentID, err)
	}

	return exists, nil
}

// ListByAppointment returns all log entries for one appointment, newest first
func (r *NotificationLogRepository) ListByAppointment(appointmentID string) ([]models.NotificationLogEntry, error) {
	query := logSelectColumns + `
        WHERE appointment_id = $1
        ORDER BY sent_at DESC
    `

	rows, err := r.DB.Query(query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification log for appointment %s: %w", appointmentID, err)
	}
	defer rows.Close()

	return scanLogEntries(rows)
}

// GetRecent returns the most recent log entries across all appointments
func (r *NotificationLogRepository) GetRecent(limit int) ([]models.NotificationLogEntry, error) {
	query := logSelectColumns + `
        ORDER BY sent_at DESC
        LIMIT $1
    `

	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent notification log entries: %w", err)
	}
	defer rows.Close()

	return scanLogEntries(rows)
}

const logSelectColumns = `
        SELECT id, appointment_id, notification_type, channel, recipient_email,
               recipient_phone, status, error_message, sent_at
        FROM notification_log`

func scanLogEntries(rows *sql.Rows) ([]models.NotificationLogEntry, error) {
	var entries []models.NotificationLogEntry
	for rows.Next() {
		var e models.NotificationLogEntry
		err := rows.Scan(
			&e.ID,
			&e.AppointmentID,
			&e.NotificationType,
			&e.Channel,
			&e.RecipientEmail,
			&e.RecipientPhone,
			&e.Status,
			&e.ErrorMessage,
			&e.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification log entries: %w", err)
	}
	return entries, nil
}
