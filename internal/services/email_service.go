package services

import (
	"fmt"
	"log"
	"net/smtp"

	"ms-notifications/internal/models"
)

// EmailService sends transactional email over SMTP. It never returns a Go
// error: transport failures come back in the ChannelResult so the dispatch
// service can treat them as data.
type EmailService struct {
	SMTPHost  string
	SMTPPort  string
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func NewEmailService(smtpHost, smtpPort, username, password, fromEmail, fromName string) *EmailService {
	return &EmailService{
		SMTPHost:  smtpHost,
		SMTPPort:  smtpPort,
		Username:  username,
		Password:  password,
		FromEmail: fromEmail,
		FromName:  fromName,
	}
}

// Send delivers a multipart HTML+plaintext email to a single recipient.
// Fails closed with a descriptive result when SMTP credentials are unset.
func (e *EmailService) Send(to, subject, html, text string) models.ChannelResult {
	if e.SMTPHost == "" || e.Username == "" || e.Password == "" {
		log.Println("SMTP credentials are not configured, refusing to send email")
		return models.ChannelResult{Success: false, Error: "SMTP credentials are not configured"}
	}

	smtpServer := fmt.Sprintf("%s:%s", e.SMTPHost, e.SMTPPort)
	auth := smtp.PlainAuth("", e.Username, e.Password, e.SMTPHost)
	from := fmt.Sprintf("%s <%s>", e.FromName, e.FromEmail)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: multipart/alternative; boundary=\"%s\"\r\n"+
			"\r\n"+
			"--%s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n"+
			"--%s\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n"+
			"--%s--\r\n",
		from, to, subject, mimeBoundary,
		mimeBoundary, text,
		mimeBoundary, html,
		mimeBoundary))

	if err := smtp.SendMail(smtpServer, auth, e.FromEmail, []string{to}, msg); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
		return models.ChannelResult{Success: false, Error: err.Error()}
	}

	log.Printf("Email sent successfully to %s", to)
	return models.ChannelResult{Success: true}
}

const mimeBoundary = "apnadoctor-mail-boundary"
