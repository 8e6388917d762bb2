package models

// ChannelResult is the uniform outcome shape returned by every channel sender.
// Senders never propagate transport errors as Go errors past their boundary;
// failures are data for the dispatch service to fold into the audit log.
type ChannelResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DispatchResult aggregates the per-channel outcomes of one dispatch operation
type DispatchResult struct {
	Success bool           `json:"success"`
	Email   *ChannelResult `json:"email,omitempty"`
	SMS     *ChannelResult `json:"sms,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ReminderOutcome records one scan-triggered dispatch attempt
type ReminderOutcome struct {
	AppointmentID string `json:"appointmentId"`
	PatientName   string `json:"patientName"`
	Success       bool   `json:"success"`
}

// ScanError records a fetch- or dispatch-level failure inside one scan run
type ScanError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ScanDetails lists per-appointment outcomes and errors for one scan run
type ScanDetails struct {
	TwoHourReminders []ReminderOutcome `json:"twoHourReminders"`
	AtTimeReminders  []ReminderOutcome `json:"atTimeReminders"`
	Errors           []ScanError       `json:"errors"`
}

// ScanRunSummary is returned to the trigger caller after each scan run.
// It is not persisted beyond the log entries the run caused.
type ScanRunSummary struct {
	Timestamp            string      `json:"timestamp"`
	TwoHourRemindersSent int         `json:"twoHourRemindersSent"`
	AtTimeRemindersSent  int         `json:"atTimeRemindersSent"`
	Errors               int         `json:"errors"`
	Details              ScanDetails `json:"details"`
}

// DispatchRequest is the body of the direct dispatch endpoint
type DispatchRequest struct {
	Type          string  `json:"type"`
	AppointmentID string  `json:"appointmentId"`
	HoursUntil    *int    `json:"hoursUntil,omitempty"`
	RefundAmount  float64 `json:"refundAmount,omitempty"`
}
