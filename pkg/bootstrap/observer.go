package bootstrap

import "time"

// AttemptKind tells the silent session check apart from interactive logins.
type AttemptKind string

const (
	AttemptAuto        AttemptKind = "auto"
	AttemptInteractive AttemptKind = "interactive"
)

// Observer receives lifecycle notifications. Calls are synchronous and must
// not block.
type Observer interface {
	PhaseChanged(from, to Phase, event Event)
	AttemptFinished(kind AttemptKind, attempt int, err error)
	RetryScheduled(attempt int, delay time.Duration)
	SigningInChanged(signingIn bool)
}

// NopObserver ignores every notification. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) PhaseChanged(Phase, Phase, Event) {}
func (NopObserver) AttemptFinished(AttemptKind, int, error) {}
func (NopObserver) RetryScheduled(int, time.Duration) {}
func (NopObserver) SigningInChanged(bool) {}

type observers []Observer

func (o observers) PhaseChanged(from, to Phase, event Event) {
	for _, ob := range o {
		ob.PhaseChanged(from, to, event)
	}
}

func (o observers) AttemptFinished(kind AttemptKind, attempt int, err error) {
	for _, ob := range o {
		ob.AttemptFinished(kind, attempt, err)
	}
}

func (o observers) RetryScheduled(attempt int, delay time.Duration) {
	for _, ob := range o {
		ob.RetryScheduled(attempt, delay)
	}
}

func (o observers) SigningInChanged(signingIn bool) {
	for _, ob := range o {
		ob.SigningInChanged(signingIn)
	}
}
