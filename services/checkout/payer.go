package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"github.com/MarcGrol/deliverybackend/lib/myerrors"
)

type Authorization struct {
	OrderUID    string
	AmountCents int64
	Currency    string
	Email       string
	// PaymentMethod is optional; without it the intent awaits confirmation by the client.
	PaymentMethod string
}

//go:generate mockgen -source=payer.go -package checkout -destination payer_mock.go Payer
type Payer interface {
	// Authorize reserves the amount without capturing it and returns the provider reference.
	// A supplied payment method is confirmed immediately and must leave the amount on hold.
	Authorize(c context.Context, auth Authorization) (string, error)
	Cancel(c context.Context, reference string) error
}

// NewPayer returns a stripe payer or, without api-key, a payer that authorizes nothing.
func NewPayer(apiKey string) Payer {
	if apiKey == "" {
		return &noopPayer{}
	}
	return newStripePayer(apiKey, nil)
}

func newStripePayer(apiKey string, backends *stripe.Backends) *stripePayer {
	return &stripePayer{
		api: client.New(apiKey, backends),
	}
}

type stripePayer struct {
	api *client.API
}

func (p *stripePayer) Authorize(c context.Context, auth Authorization) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(auth.AmountCents),
		Currency:      stripe.String(auth.Currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Description:   stripe.String(fmt.Sprintf("Order %s", auth.OrderUID)),
	}
	if auth.Email != "" {
		params.ReceiptEmail = stripe.String(auth.Email)
	}
	params.Context = c
	params.SetIdempotencyKey(auth.OrderUID)
	params.AddMetadata("orderUID", auth.OrderUID)

	if auth.PaymentMethod != "" {
		params.PaymentMethod = stripe.String(auth.PaymentMethod)
		params.Confirm = stripe.Bool(true)
	}

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return "", myerrors.NewPaymentRequiredError(fmt.Errorf("payment for order %s declined: %s", auth.OrderUID, stripeErr.Msg))
		}
		return "", myerrors.NewUnavailableError(fmt.Errorf("error authorizing payment for order %s: %s", auth.OrderUID, err))
	}

	if auth.PaymentMethod != "" && intent.Status != stripe.PaymentIntentStatusRequiresCapture {
		cancelErr := p.Cancel(c, intent.ID)
		if cancelErr != nil {
			return "", myerrors.NewUnavailableError(cancelErr)
		}
		return "", myerrors.NewPaymentRequiredError(fmt.Errorf("payment %s for order %s not authorized: status %s", intent.ID, auth.OrderUID, intent.Status))
	}

	return intent.ID, nil
}

func (p *stripePayer) Cancel(c context.Context, reference string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = c

	_, err := p.api.PaymentIntents.Cancel(reference, params)
	if err != nil {
		return fmt.Errorf("error cancelling payment %s: %s", reference, err)
	}
	return nil
}

type noopPayer struct{}

func (p *noopPayer) Authorize(c context.Context, auth Authorization) (string, error) {
	return "", nil
}

func (p *noopPayer) Cancel(c context.Context, reference string) error {
	return nil
}
