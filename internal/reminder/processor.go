package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"ms-notifications/internal/config"
	"ms-notifications/internal/models"
	"ms-notifications/internal/sqsutil"
)

// Processor consumes scan trigger messages from SQS. The EventBridge schedule
// drops one message per interval; each message causes one scanner run.
type Processor struct {
	sqsClient *sqs.Client
	cfg       config.Config
	queueURL  string
	scanner   *Scanner
}

// NewProcessor creates a new reminder scan processor
func NewProcessor(sqsClient *sqs.Client, cfg config.Config, scanner *Scanner) *Processor {
	return &Processor{
		sqsClient: sqsClient,
		cfg:       cfg,
		queueURL:  cfg.SQSReminderScanQueueURL,
		scanner:   scanner,
	}
}

// ProcessMessages processes messages from the reminder scan queue
func (p *Processor) ProcessMessages(ctx context.Context) error {
	if p.queueURL == "" {
		log.Println("Reminder scan queue URL not configured, skipping scan processor")
		return fmt.Errorf("reminder scan queue URL not configured")
	}

	log.Printf("Starting to process reminder scan triggers from %s", p.queueURL)

	for {
		select {
		case <-ctx.Done():
			log.Println("Context cancelled, stopping reminder scan processor")
			return ctx.Err()
		default:
			// Continue processing
		}

		rawMessages, err := sqsutil.ReceiveMessage(p.sqsClient, p.queueURL)
		if err != nil {
			log.Printf("Error receiving messages from reminder scan queue: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		if len(rawMessages) == 0 {
			continue // Long polling already waited, no need to sleep
		}

		log.Printf("Received %d messages from reminder scan queue.", len(rawMessages))
		var messagesToDelete []types.DeleteMessageBatchRequestEntry

		// A burst of trigger messages still causes at most one scan per
		// message; the dedup guard makes the extra runs harmless. Trigger
		// messages are always deleted: a fully failed scan is retried
		// naturally by the next scheduled tick, not by SQS redelivery.
		for _, rawMessage := range rawMessages {
			var messageBody models.SQSScanMessageBody
			if err := json.Unmarshal([]byte(*rawMessage.Body), &messageBody); err != nil {
				log.Printf("Error unmarshalling scan trigger body, will delete malformed message: %v", err)
				messagesToDelete = append(messagesToDelete, types.DeleteMessageBatchRequestEntry{
					Id:            rawMessage.MessageId,
					ReceiptHandle: rawMessage.ReceiptHandle,
				})
				continue
			}

			if messageBody.Action != models.ScanActionReminders {
				log.Printf("Unknown scan trigger action: %s, skipping", messageBody.Action)
			} else {
				summary := p.scanner.Run(time.Now())
				log.Printf("Scan trigger processed: twoHour=%d atTime=%d errors=%d",
					summary.TwoHourRemindersSent, summary.AtTimeRemindersSent, summary.Errors)
			}

			messagesToDelete = append(messagesToDelete, types.DeleteMessageBatchRequestEntry{
				Id:            rawMessage.MessageId,
				ReceiptHandle: rawMessage.ReceiptHandle,
			})
		}

		if len(messagesToDelete) > 0 {
			err := sqsutil.DeleteMessageBatch(p.queueURL, p.sqsClient, messagesToDelete)
			if err != nil {
				log.Printf("Error batch deleting scan trigger messages: %v", err)
			}
		}
	}
}
