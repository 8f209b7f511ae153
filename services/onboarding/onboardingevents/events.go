package onboardingevents

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcGrol/deliverybackend/lib/myerrors"
	"github.com/MarcGrol/deliverybackend/lib/myevents"
)

const (
	TopicName               = "onboarding"
	onboardingStartedName   = TopicName + ".started"
	stepCompletedName       = TopicName + ".stepCompleted"
	onboardingCompletedName = TopicName + ".completed"
)

type OnboardingEventService interface {
	OnOnboardingStarted(c context.Context, topic string, event OnboardingStarted) error
	OnStepCompleted(c context.Context, topic string, event StepCompleted) error
	OnOnboardingCompleted(c context.Context, topic string, event OnboardingCompleted) error
}

func DispatchEvent(c context.Context, envelope myevents.EventEnvelope, service OnboardingEventService) error {
	switch envelope.EventTypeName {
	case onboardingStartedName:
		event, err := myevents.UnmarshalPayload[OnboardingStarted](envelope)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnOnboardingStarted(c, envelope.Topic, event)
	case stepCompletedName:
		event, err := myevents.UnmarshalPayload[StepCompleted](envelope)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnStepCompleted(c, envelope.Topic, event)
	case onboardingCompletedName:
		event, err := myevents.UnmarshalPayload[OnboardingCompleted](envelope)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnOnboardingCompleted(c, envelope.Topic, event)
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unsupported event %s", envelope.EventTypeName))
	}
}

type OnboardingStarted struct {
	UserUID     string
	DriverName  string
	DriverEmail string
}

func (e OnboardingStarted) GetEventTypeName() string {
	return onboardingStartedName
}

func (e OnboardingStarted) GetAggregateName() string {
	return e.UserUID
}

type StepCompleted struct {
	UserUID   string
	Step      string
	StepIndex int
}

func (e StepCompleted) GetEventTypeName() string {
	return stepCompletedName
}

func (e StepCompleted) GetAggregateName() string {
	return e.UserUID
}

type OnboardingCompleted struct {
	UserUID     string
	CompletedAt time.Time
}

func (e OnboardingCompleted) GetEventTypeName() string {
	return onboardingCompletedName
}

func (e OnboardingCompleted) GetAggregateName() string {
	return e.UserUID
}
