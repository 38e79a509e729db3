package main

import (
	"fmt"
	"io"
	"time"

	"github.com/map-of-pi/mapofpi/pkg/bootstrap"
)

// progress prints retry notices while the login loop runs.
type progress struct {
	bootstrap.NopObserver
	out io.Writer
}

func (p progress) AttemptFinished(kind bootstrap.AttemptKind, attempt int, err error) {
	if err == nil || kind != bootstrap.AttemptInteractive {
		return
	}
	fmt.Fprintln(p.out, warningStyle.Render(fmt.Sprintf("Login attempt %d failed: %v", attempt+1, err)))
}

func (p progress) RetryScheduled(attempt int, delay time.Duration) {
	fmt.Fprintln(p.out, infoStyle.Render(fmt.Sprintf("Retrying in %s (retry %d)", delay.Round(100*time.Millisecond), attempt+1)))
}
