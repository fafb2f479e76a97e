package sendGrid

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
	GetSendGridClient() *sendgrid.Client
}

type emailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey string, fromEmail string, fromName string) EmailService {
	return &emailService{client: sendgrid.NewSendClient(apiKey), fromEmail: fromEmail, fromName: fromName}
}

// SendVerificationCode implements EmailService.
func (e *emailService) SendVerificationCode(ctx context.Context, to, name, code string) error {

	from := mail.NewEmail(e.fromName, e.fromEmail)
	recipient := mail.NewEmail(name, to)

	message := mail.NewV3Mail()
	message.SetFrom(from)

	personalization := mail.NewPersonalization()
	personalization.AddTos(recipient)
	personalization.Subject = "Verify your registration"
	message.AddPersonalizations(personalization)

	message.AddContent(mail.NewContent("text/plain",
		fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in 24 hours.\n", name, code)))
	message.AddContent(mail.NewContent("text/html",
		fmt.Sprintf("<p>Hi %s,</p><p>Your verification code is <strong>%s</strong>. It expires in 24 hours.</p>", name, code)))

	// send the email
	response, err := e.client.Send(message)

	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	return nil
}

// GetSendGridClient provides access to the internal sendgrid.Client.
func (e *emailService) GetSendGridClient() *sendgrid.Client {
	return e.client
}
