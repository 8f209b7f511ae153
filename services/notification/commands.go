package notification

import (
	"context"
	"fmt"

	"github.com/MarcGrol/deliverybackend/lib/myemail"
	"github.com/MarcGrol/deliverybackend/lib/myerrors"
	"github.com/MarcGrol/deliverybackend/lib/mylog"
	"github.com/MarcGrol/deliverybackend/lib/mymetrics"
	"github.com/MarcGrol/deliverybackend/services/checkout/checkoutevents"
	"github.com/MarcGrol/deliverybackend/services/onboarding/onboardingevents"
)

func (s *service) Subscribe(c context.Context) error {
	for _, topic := range []string{onboardingevents.TopicName, checkoutevents.TopicName} {
		err := s.subscriber.CreateTopic(c, topic)
		if err != nil {
			return fmt.Errorf("error creating topic %s: %s", topic, err)
		}

		err = s.subscriber.Subscribe(c, topic, s.baseURL+"/api/notifications/event")
		if err != nil {
			return fmt.Errorf("error subscribing to topic %s: %s", topic, err)
		}
	}

	return nil
}

func (s *service) sendDriverWelcome(c context.Context, req DriverWelcomeRequest) (string, error) {
	if req.DriverEmail == "" {
		return "", myerrors.NewInvalidInputErrorf("missing driverEmail")
	}

	s.logger.Log(c, req.DriverEmail, mylog.SeverityInfo, "Sending driver onboarding welcome email to %s", req.DriverEmail)

	html, err := renderDriverWelcome(driverWelcomeData{
		DriverName:     req.DriverName,
		OnboardingURL:  s.onboardingURL,
		DriverGuideURL: s.driverGuideURL,
		Year:           s.nower.Now().Year(),
	})
	if err != nil {
		return "", myerrors.NewInternalError(err)
	}

	id, err := s.sender.Send(c, myemail.Email{
		From:    s.fromEmail,
		To:      []string{req.DriverEmail},
		Subject: driverWelcomeSubject,
		HTML:    html,
	})
	mymetrics.EmailSent(driverWelcomeTemplateName, err)
	if err != nil {
		return "", err
	}

	s.logger.Log(c, req.DriverEmail, mylog.SeverityInfo, "Driver welcome email sent successfully: %s", id)

	return id, nil
}

func (s *service) OnOnboardingStarted(c context.Context, topic string, event onboardingevents.OnboardingStarted) error {
	_, err := s.sendDriverWelcome(c, DriverWelcomeRequest{
		DriverName:  event.DriverName,
		DriverEmail: event.DriverEmail,
	})
	return err
}

func (s *service) OnStepCompleted(c context.Context, topic string, event onboardingevents.StepCompleted) error {
	s.logger.Log(c, event.UserUID, mylog.SeverityDebug, "Driver %s completed step %s", event.UserUID, event.Step)
	return nil
}

func (s *service) OnOnboardingCompleted(c context.Context, topic string, event onboardingevents.OnboardingCompleted) error {
	s.logger.Log(c, event.UserUID, mylog.SeverityInfo, "Driver %s completed onboarding", event.UserUID)
	return nil
}

func (s *service) OnOrderPlaced(c context.Context, topic string, event checkoutevents.OrderPlaced) error {
	if event.CustomerEmail == "" {
		s.logger.Log(c, event.OrderUID, mylog.SeverityInfo, "Order %s has no contact email: skip confirmation", event.OrderUID)
		return nil
	}

	html, err := renderOrderConfirmation(event, s.nower.Now())
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	id, err := s.sender.Send(c, myemail.Email{
		From:    s.fromEmail,
		To:      []string{event.CustomerEmail},
		Subject: fmt.Sprintf("Your order from %s is confirmed", event.RestaurantName),
		HTML:    html,
	})
	mymetrics.EmailSent(orderConfirmationTemplateName, err)
	if err != nil {
		return err
	}

	s.logger.Log(c, event.OrderUID, mylog.SeverityInfo, "Order confirmation for %s sent: %s", event.OrderUID, id)

	return nil
}
