package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"

	appconfig "ms-notifications/internal/config"
	"ms-notifications/internal/models"
)

const scanScheduleName = "appointment-reminder-scan"

// Service encapsulates the EventBridge Scheduler functionality.
type Service struct {
	SchedulerClient *scheduler.Client
	Config          appconfig.Config
}

// NewService creates a new scheduler service.
func NewService(cfg appconfig.Config, schedulerClient *scheduler.Client) *Service {
	return &Service{
		SchedulerClient: schedulerClient,
		Config:          cfg,
	}
}

// EnsureScanSchedule idempotently provisions the recurring schedule that
// drops a scan trigger message onto the reminder scan queue every scan
// interval. Called at startup; a schedule left behind by a previous deploy
// is updated in place.
func (s *Service) EnsureScanSchedule() error {
	minutes := int(s.Config.ScanInterval.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	scheduleExpression := fmt.Sprintf("rate(%d minutes)", minutes)

	messageBody := models.SQSScanMessageBody{Action: models.ScanActionReminders}
	inputJSON, err := json.Marshal(messageBody)
	if err != nil {
		log.Printf("Error marshaling scan trigger body to JSON: %v", err)
		return err
	}

	target := types.Target{
		Arn:     aws.String(s.Config.SQSReminderScanQueueARN),
		RoleArn: aws.String(s.Config.SchedulerRoleARN),
		Input:   aws.String(string(inputJSON)),
	}

	log.Printf("Ensuring schedule '%s' with expression %s", scanScheduleName, scheduleExpression)

	_, err = s.SchedulerClient.CreateSchedule(context.TODO(), &scheduler.CreateScheduleInput{
		Name:                       aws.String(scanScheduleName),
		GroupName:                  aws.String(s.Config.SchedulerGroupName),
		ScheduleExpression:         aws.String(scheduleExpression),
		Target:                     &target,
		FlexibleTimeWindow:         &types.FlexibleTimeWindow{Mode: types.FlexibleTimeWindowModeOff},
		ScheduleExpressionTimezone: aws.String("UTC"),
	})

	if err != nil {
		var conflict *types.ConflictException
		if errors.As(err, &conflict) {
			log.Printf("Schedule '%s' already exists. Attempting to update.", scanScheduleName)
			_, updateErr := s.SchedulerClient.UpdateSchedule(context.TODO(), &scheduler.UpdateScheduleInput{
				Name:                       aws.String(scanScheduleName),
				GroupName:                  aws.String(s.Config.SchedulerGroupName),
				ScheduleExpression:         aws.String(scheduleExpression),
				Target:                     &target,
				FlexibleTimeWindow:         &types.FlexibleTimeWindow{Mode: types.FlexibleTimeWindowModeOff},
				ScheduleExpressionTimezone: aws.String("UTC"),
			})
			if updateErr != nil {
				log.Printf("Failed to update reminder scan schedule: %v", updateErr)
				return updateErr
			}
			log.Println("Successfully updated reminder scan schedule.")
			return nil
		}
		log.Printf("Failed to create reminder scan schedule: %v", err)
		return err
	}

	log.Println("Successfully created reminder scan schedule.")
	return nil
}

// DeleteScanSchedule removes the recurring scan schedule from EventBridge.
func (s *Service) DeleteScanSchedule() {
	log.Printf("Deleting schedule '%s'", scanScheduleName)

	_, err := s.SchedulerClient.DeleteSchedule(context.TODO(), &scheduler.DeleteScheduleInput{
		Name:      aws.String(scanScheduleName),
		GroupName: aws.String(s.Config.SchedulerGroupName),
	})

	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			log.Printf("Schedule '%s' not found for deletion.", scanScheduleName)
			return
		}
		log.Printf("Error deleting schedule '%s': %v", scanScheduleName, err)
	} else {
		log.Printf("Successfully deleted schedule '%s'", scanScheduleName)
	}
}
