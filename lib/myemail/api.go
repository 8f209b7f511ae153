package myemail

import (
	"context"
)

type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

type Options struct {
	ResendAPIKey string
	ResendURL    string
}

//go:generate mockgen -source=api.go -package myemail -destination sender_mock.go Sender
type Sender interface {
	// Send returns the id the provider assigned to the message.
	Send(c context.Context, email Email) (string, error)
}

// New sends through Resend when an api-key is configured and only logs otherwise.
func New(opts Options) (Sender, error) {
	if opts.ResendAPIKey != "" {
		return newResendSender(opts)
	}
	return newLoggingSender(), nil
}
