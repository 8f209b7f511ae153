package onboarding

import (
	"fmt"
	"time"
)

type StepID string

const (
	StepWelcome  StepID = "welcome"
	StepVideo    StepID = "video"
	StepSafety   StepID = "safety"
	StepW9       StepID = "w9"
	StepPayment  StepID = "payment"
	StepTest     StepID = "test"
	StepComplete StepID = "complete"
)

type Step struct {
	ID    StepID
	Title string
}

var Steps = []Step{
	{ID: StepWelcome, Title: "Welcome"},
	{ID: StepVideo, Title: "Orientation"},
	{ID: StepSafety, Title: "Safety Quiz"},
	{ID: StepW9, Title: "Tax Form"},
	{ID: StepPayment, Title: "Payment Setup"},
	{ID: StepTest, Title: "Test Delivery"},
	{ID: StepComplete, Title: "Complete"},
}

var lastStepIndex = len(Steps) - 1

// ResolveStepIndex returns the index of the first step whose condition is not met.
// Flags are not required to be set in order: the first unmet one wins.
func ResolveStepIndex(progress *Progress) int {
	switch {
	case progress == nil:
		return 0
	case !progress.OrientationVideoWatched:
		return 1
	case !progress.SafetyQuizPassed:
		return 2
	case !progress.W9Completed:
		return 3
	case !progress.PaymentMethodAdded:
		return 4
	case progress.OnboardingCompletedAt.IsZero():
		return 5
	default:
		return 6
	}
}

// NextStepIndex never moves past the complete step.
func NextStepIndex(index int) int {
	return min(index+1, lastStepIndex)
}

// ProgressPercentage is round((index+1)/7*100), rounded half-up.
func ProgressPercentage(index int) int {
	n := (index + 1) * 100
	d := len(Steps)
	return (2*n + d) / (2 * d)
}

func validateStepIndex(index int) error {
	if index < 0 || index > lastStepIndex {
		return fmt.Errorf("step index %d outside 0..%d", index, lastStepIndex)
	}
	return nil
}

func hasCondition(index int) bool {
	id := Steps[index].ID
	return id != StepWelcome && id != StepComplete
}

// applyStep marks the condition of the step at index as met. It reports false for the
// welcome and complete steps, which carry no condition.
func applyStep(progress *Progress, index int, now time.Time) bool {
	switch Steps[index].ID {
	case StepVideo:
		progress.OrientationVideoWatched = true
	case StepSafety:
		progress.SafetyQuizPassed = true
	case StepW9:
		progress.W9Completed = true
	case StepPayment:
		progress.PaymentMethodAdded = true
	case StepTest:
		progress.OnboardingCompletedAt = now
	default:
		return false
	}
	return true
}

func stepViews(currentIndex int) []StepView {
	views := make([]StepView, 0, len(Steps))
	for i, step := range Steps {
		status := StepStatusUpcoming
		switch {
		case i < currentIndex:
			status = StepStatusCompleted
		case i == currentIndex:
			status = StepStatusCurrent
		}
		views = append(views, StepView{ID: step.ID, Title: step.Title, Status: status})
	}
	return views
}

func newWizardView(progress *Progress, currentIndex int) WizardView {
	view := WizardView{
		CurrentStepIndex:   currentIndex,
		CurrentStep:        Steps[currentIndex].ID,
		StepLabel:          fmt.Sprintf("Step %d of %d", currentIndex+1, len(Steps)),
		ProgressPercentage: ProgressPercentage(currentIndex),
		Steps:              stepViews(currentIndex),
	}
	if progress != nil {
		view.Progress = &ProgressView{
			UserUID:                  progress.UserUID,
			CurrentStep:              progress.CurrentStep,
			ProfileCreationCompleted: progress.ProfileCreationCompleted,
			OrientationVideoWatched:  progress.OrientationVideoWatched,
			SafetyQuizPassed:         progress.SafetyQuizPassed,
			W9Completed:              progress.W9Completed,
			PaymentMethodAdded:       progress.PaymentMethodAdded,
			UpdatedAt:                progress.UpdatedAt,
		}
		if !progress.OnboardingCompletedAt.IsZero() {
			completedAt := progress.OnboardingCompletedAt
			view.Progress.OnboardingCompletedAt = &completedAt
		}
	}
	return view
}
