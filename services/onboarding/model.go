package onboarding

import "time"

const ProgressKind = "driver_onboarding_progress"

// Progress is persisted per driver. A zero OnboardingCompletedAt means not completed.
type Progress struct {
	UserUID                  string
	CurrentStep              string
	ProfileCreationCompleted bool
	OrientationVideoWatched  bool
	SafetyQuizPassed         bool
	W9Completed              bool
	PaymentMethodAdded       bool
	OnboardingCompletedAt    time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

type StartRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AdvanceRequest struct {
	CurrentStepIndex *int `json:"currentStepIndex"`
}

type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusCurrent   StepStatus = "current"
	StepStatusUpcoming  StepStatus = "upcoming"
)

type StepView struct {
	ID     StepID     `json:"id"`
	Title  string     `json:"title"`
	Status StepStatus `json:"status"`
}

type ProgressView struct {
	UserUID                  string     `json:"userUID"`
	CurrentStep              string     `json:"currentStep"`
	ProfileCreationCompleted bool       `json:"profileCreationCompleted"`
	OrientationVideoWatched  bool       `json:"orientationVideoWatched"`
	SafetyQuizPassed         bool       `json:"safetyQuizPassed"`
	W9Completed              bool       `json:"w9Completed"`
	PaymentMethodAdded       bool       `json:"paymentMethodAdded"`
	OnboardingCompletedAt    *time.Time `json:"onboardingCompletedAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`
}

type WizardView struct {
	Progress           *ProgressView `json:"progress"`
	CurrentStepIndex   int           `json:"currentStepIndex"`
	CurrentStep        StepID        `json:"currentStep"`
	StepLabel          string        `json:"stepLabel"`
	ProgressPercentage int           `json:"progressPercentage"`
	Steps              []StepView    `json:"steps"`
}
