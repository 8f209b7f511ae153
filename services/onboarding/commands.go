package onboarding

import (
	"context"
	"fmt"

	"github.com/MarcGrol/deliverybackend/lib/myauth"
	"github.com/MarcGrol/deliverybackend/lib/myerrors"
	"github.com/MarcGrol/deliverybackend/lib/mylog"
	"github.com/MarcGrol/deliverybackend/lib/mymetrics"
	"github.com/MarcGrol/deliverybackend/services/onboarding/onboardingevents"
)

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, onboardingevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", onboardingevents.TopicName, err)
	}
	return nil
}

func (s *service) getWizard(c context.Context, user myauth.User) (WizardView, error) {
	s.logger.Log(c, user.UID, mylog.SeverityInfo, "Fetch onboarding progress of driver %s", user.UID)

	progress, found, err := s.progressStore.Get(c, user.UID)
	if err != nil {
		return WizardView{}, myerrors.NewInternalError(err)
	}
	if !found {
		return newWizardView(nil, ResolveStepIndex(nil)), nil
	}

	return newWizardView(&progress, ResolveStepIndex(&progress)), nil
}

func (s *service) startOnboarding(c context.Context, user myauth.User, req StartRequest) (WizardView, bool, error) {
	email := req.Email
	if email == "" {
		email = user.Email
	}
	if req.Name == "" {
		return WizardView{}, false, myerrors.NewInvalidInputErrorf("missing name")
	}
	if email == "" {
		return WizardView{}, false, myerrors.NewInvalidInputErrorf("missing email")
	}

	now := s.nower.Now()

	var progress Progress
	created := false
	err := s.progressStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		existing, found, err := s.progressStore.Get(c, user.UID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if found {
			progress = existing
			return nil
		}

		progress = Progress{
			UserUID:                  user.UID,
			ProfileCreationCompleted: true,
			CreatedAt:                now,
			UpdatedAt:                now,
		}
		progress.CurrentStep = string(Steps[ResolveStepIndex(&progress)].ID)

		err = s.progressStore.Put(c, user.UID, progress)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, onboardingevents.TopicName, onboardingevents.OnboardingStarted{
			UserUID:     user.UID,
			DriverName:  req.Name,
			DriverEmail: email,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		created = true
		return nil
	})
	if err != nil {
		return WizardView{}, false, err
	}

	if created {
		s.logger.Log(c, user.UID, mylog.SeverityInfo, "Started onboarding of driver %s", user.UID)
	}

	return newWizardView(&progress, ResolveStepIndex(&progress)), created, nil
}

// advance completes the step the driver is looking at and moves on to the next one.
func (s *service) advance(c context.Context, user myauth.User, currentIndex int) (WizardView, error) {
	err := validateStepIndex(currentIndex)
	if err != nil {
		return WizardView{}, myerrors.NewInvalidInputError(err)
	}

	step := Steps[currentIndex]
	nextIndex := NextStepIndex(currentIndex)

	s.logger.Log(c, user.UID, mylog.SeverityInfo, "Driver %s completes step %s", user.UID, step.ID)

	if !hasCondition(currentIndex) {
		// welcome and complete only move the wizard; a driver may not have a record yet
		existing, found, err := s.progressStore.Get(c, user.UID)
		if err != nil {
			return WizardView{}, myerrors.NewInternalError(err)
		}
		if !found {
			return newWizardView(nil, nextIndex), nil
		}
		return newWizardView(&existing, nextIndex), nil
	}

	now := s.nower.Now()

	var progress Progress
	changed := false
	err = s.progressStore.RunInTransaction(c, func(c context.Context) error {
		var found bool
		progress, found, err = s.progressStore.Get(c, user.UID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("onboarding progress of driver %s not found", user.UID))
		}

		changed = applyStep(&progress, currentIndex, now)
		if !changed {
			return nil
		}

		progress.CurrentStep = string(Steps[nextIndex].ID)
		progress.UpdatedAt = now

		err = s.progressStore.Put(c, user.UID, progress)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, onboardingevents.TopicName, onboardingevents.StepCompleted{
			UserUID:   user.UID,
			Step:      string(step.ID),
			StepIndex: currentIndex,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		if step.ID == StepTest {
			err = s.publisher.Publish(c, onboardingevents.TopicName, onboardingevents.OnboardingCompleted{
				UserUID:     user.UID,
				CompletedAt: now,
			})
			if err != nil {
				return myerrors.NewInternalError(err)
			}
		}

		return nil
	})
	if err != nil {
		return WizardView{}, err
	}

	if changed {
		mymetrics.OnboardingStepCompleted(string(step.ID))
	}

	return newWizardView(&progress, nextIndex), nil
}
