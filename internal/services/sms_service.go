package services

import (
	"log"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"ms-notifications/internal/models"
)

// SMSService sends SMS through Twilio. Like the email sender it converts
// every transport failure into a ChannelResult instead of returning an error.
type SMSService struct {
	client      *twilio.RestClient
	accountSID  string
	authToken   string
	fromNumber  string
	countryCode string // e.g. "+92", prepended when normalizing local numbers
}

func NewSMSService(accountSID, authToken, fromNumber, countryCode string) *SMSService {
	var client *twilio.RestClient
	if accountSID != "" && authToken != "" {
		client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
	}

	return &SMSService{
		client:      client,
		accountSID:  accountSID,
		authToken:   authToken,
		fromNumber:  fromNumber,
		countryCode: countryCode,
	}
}

// Send delivers a single text message, normalizing the recipient number first
func (s *SMSService) Send(to, message string) models.ChannelResult {
	if s.client == nil {
		log.Println("Twilio credentials are not configured, refusing to send SMS")
		return models.ChannelResult{Success: false, Error: "Twilio credentials are not configured"}
	}

	phoneNumber := s.NormalizePhoneNumber(to)
	log.Printf("Sending SMS to: %s", phoneNumber)

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phoneNumber)
	params.SetFrom(s.fromNumber)
	params.SetBody(message)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("SMS service error: %v", err)
		return models.ChannelResult{Success: false, Error: err.Error()}
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	log.Printf("SMS sent successfully: %s", sid)
	return models.ChannelResult{Success: true, ID: sid}
}

// NormalizePhoneNumber converts a local-format number into E.164 form.
// Numbers already carrying a "+" prefix pass through unchanged; a leading
// zero national prefix is replaced with the configured country code; bare
// national numbers get the country code prepended.
func (s *SMSService) NormalizePhoneNumber(raw string) string {
	number := strings.TrimSpace(raw)
	if strings.HasPrefix(number, "+") {
		return number
	}
	if strings.HasPrefix(number, "0") {
		return s.countryCode + number[1:]
	}
	return s.countryCode + number
}
