package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"ms-notifications/internal/config"
	"ms-notifications/internal/models"
)

// NotificationDispatcher is the subset of the dispatch service the booking
// consumer needs.
type NotificationDispatcher interface {
	SendAppointmentConfirmation(appointmentID string) (*models.DispatchResult, error)
	SendCancellationNotification(appointmentID string, refundAmount float64) (*models.DispatchResult, error)
}

// BookingConsumer handles appointment lifecycle events published by the
// booking service. This is the asynchronous boundary that keeps booking
// success independent of notification outcome: events arrive after the
// appointment row is committed, and a dispatch failure is recorded in the
// notification log rather than retried.
type BookingConsumer struct {
	createdConsumer   *BaseConsumer
	cancelledConsumer *BaseConsumer
	dispatcher        NotificationDispatcher
}

// NewBookingConsumer creates consumers for the created and cancelled topics
func NewBookingConsumer(cfg config.Config, dispatcher NotificationDispatcher) *BookingConsumer {
	return &BookingConsumer{
		createdConsumer:   NewBaseConsumer(cfg, cfg.KafkaURL, cfg.AppointmentsCreatedKafkaTopic),
		cancelledConsumer: NewBaseConsumer(cfg, cfg.KafkaURL, cfg.AppointmentsCancelledKafkaTopic),
		dispatcher:        dispatcher,
	}
}

// StartConsuming starts consuming booking events from both topics
func (c *BookingConsumer) StartConsuming(ctx context.Context) error {
	var wg sync.WaitGroup

	if c.createdConsumer.Reader != nil {
		log.Printf("Starting booking consumer for topic %s", c.createdConsumer.Reader.Config().Topic)
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.createdConsumer.ConsumeMessages(ctx, c.processAppointmentCreated)
		}()
	}

	if c.cancelledConsumer.Reader != nil {
		log.Printf("Starting booking consumer for topic %s", c.cancelledConsumer.Reader.Config().Topic)
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.cancelledConsumer.ConsumeMessages(ctx, c.processAppointmentCancelled)
		}()
	}

	wg.Wait()
	return nil
}

// processAppointmentCreated handles appointment created events
func (c *BookingConsumer) processAppointmentCreated(value []byte) error {
	var event models.AppointmentEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("Error unmarshalling appointment created event: %v", err)
		return err
	}
	if event.AppointmentID == "" {
		return fmt.Errorf("appointment created event has empty appointmentId")
	}

	log.Printf("Processing appointment created for AppointmentID=%s Status=%s",
		event.AppointmentID, event.Status)

	result, err := c.dispatcher.SendAppointmentConfirmation(event.AppointmentID)
	if err != nil {
		// Fire-and-forget contract: the failed attempt is already recorded in
		// the notification log, so the event is not redelivered.
		log.Printf("Failed to send confirmation for appointment %s: %v", event.AppointmentID, err)
		return nil
	}

	log.Printf("Confirmation dispatch for appointment %s completed (success=%t)",
		event.AppointmentID, result.Success)
	return nil
}

// processAppointmentCancelled handles appointment cancelled events
func (c *BookingConsumer) processAppointmentCancelled(value []byte) error {
	var event models.AppointmentEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("Error unmarshalling appointment cancelled event: %v", err)
		return err
	}
	if event.AppointmentID == "" {
		return fmt.Errorf("appointment cancelled event has empty appointmentId")
	}

	log.Printf("Processing appointment cancelled for AppointmentID=%s RefundAmount=%.2f",
		event.AppointmentID, event.RefundAmount)

	result, err := c.dispatcher.SendCancellationNotification(event.AppointmentID, event.RefundAmount)
	if err != nil {
		log.Printf("Failed to send cancellation notification for appointment %s: %v", event.AppointmentID, err)
		return nil
	}

	log.Printf("Cancellation dispatch for appointment %s completed (success=%t)",
		event.AppointmentID, result.Success)
	return nil
}
