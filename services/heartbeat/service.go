// Package heartbeat drives the board LEDs: a red, yellow, green signal
// sequence at boot, then the status LED toggles once per railway step.
package heartbeat

import (
	"context"
	"time"

	"modellbahn-go/bus"
	"modellbahn-go/platform"
	"modellbahn-go/x/logx"
)

var topicTransition = bus.T("railway", "transition")

// Startup phases.
const (
	RedFor    = 500 * time.Millisecond
	YellowFor = 200 * time.Millisecond
)

type Service struct {
	Red, Yellow, Green platform.Pin
	Status             platform.Pin
	Log                logx.Logger

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) bool
}

// New takes the LEDs from res.
func New(res platform.Resources, log logx.Logger) *Service {
	if log == nil {
		log = logx.Nop{}
	}
	return &Service{
		Red:    res.Red,
		Yellow: res.Yellow,
		Green:  res.Green,
		Status: res.Status,
		Log:    log,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Signal runs the boot sequence: red, then yellow, then green left on.
// It returns false if ctx ended first.
func (s *Service) Signal(ctx context.Context) bool {
	s.Red.Set(true)
	if !s.sleep(ctx, RedFor) {
		return false
	}
	s.Red.Set(false)
	s.Yellow.Set(true)
	if !s.sleep(ctx, YellowFor) {
		return false
	}
	s.Yellow.Set(false)
	s.Green.Set(true)
	return true
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, sub *bus.Subscription) {
	defer conn.Unsubscribe(sub)

	// loop until context is cancelled, blink on every step
	for {
		select {
		case <-ctx.Done():
			s.Log.Info("heartbeat stopping")
			return
		case _, ok := <-sub.Channel():
			if !ok {
				return
			}
			s.Status.Toggle()
		}
	}
}

// Start subscribes to transitions, then runs the signal sequence and the
// blink loop in a goroutine. Steps taken during the sequence still blink.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	sub := conn.Subscribe(topicTransition)
	go func() {
		if !s.Signal(ctx) {
			conn.Unsubscribe(sub)
			return
		}
		s.Log.Info("signal green")
		s.serviceLoop(ctx, conn, sub)
	}()
	return nil
}
