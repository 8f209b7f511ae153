package myemail

import (
	"context"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v2"
)

type resendSender struct {
	client *resend.Client
}

func newResendSender(opts Options) (*resendSender, error) {
	client := resend.NewClient(opts.ResendAPIKey)
	if opts.ResendURL != "" {
		baseURL, err := url.Parse(opts.ResendURL)
		if err != nil {
			return nil, fmt.Errorf("invalid resend url '%s': %s", opts.ResendURL, err)
		}
		client.BaseURL = baseURL
	}
	return &resendSender{client: client}, nil
}

func (s *resendSender) Send(c context.Context, email Email) (string, error) {
	sent, err := s.client.Emails.SendWithContext(c, &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("error sending email to %v: %s", email.To, err)
	}
	return sent.Id, nil
}
