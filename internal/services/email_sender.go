package services

type EmailSender interface {
	Send(to string, subject string, textBody string, htmlBody string) error
}
