package reset

import (
	"errors"
	"testing"
	"time"

	"github.com/muurk/thermabridge/internal/gpio"
)

const tick = 200 * time.Millisecond

type brokenInput struct{}

func (brokenInput) Read() (gpio.Level, error) {
	return gpio.Low, errors.New("line unreadable")
}

// holdFor presses the button at start and samples every tick until elapsed
// has passed, returning how many times Check fired.
func holdFor(m *Monitor, b *gpio.Button, start time.Time, elapsed, hold time.Duration) int {
	fired := 0
	b.Press()
	for d := time.Duration(0); d <= elapsed; d += tick {
		if m.Check(start.Add(d), hold) {
			fired++
		}
	}
	return fired
}

func TestMonitor_HoldBoundary(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		holdSec int
		elapsed time.Duration
		want    int
	}{
		{"exactly the hold duration fires", 10, 10000 * time.Millisecond, 1},
		{"one interval less does not fire", 10, 9800 * time.Millisecond, 0},
		{"short hold exact", 3, 3000 * time.Millisecond, 1},
		{"short hold minus one interval", 3, 2800 * time.Millisecond, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b gpio.Button
			m := NewMonitor(&b)
			hold := time.Duration(tt.holdSec) * time.Second

			if got := holdFor(m, &b, start, tt.elapsed, hold); got != tt.want {
				t.Errorf("fired %d times, want %d", got, tt.want)
			}
		})
	}
}

func TestMonitor_FiresOncePerPress(t *testing.T) {
	var b gpio.Button
	m := NewMonitor(&b)
	start := time.Unix(1000, 0)

	if got := holdFor(m, &b, start, 30*time.Second, 10*time.Second); got != 1 {
		t.Fatalf("fired %d times during one long press, want 1", got)
	}

	b.Release()
	m.Check(start.Add(31*time.Second), 10*time.Second)

	if got := holdFor(m, &b, start.Add(32*time.Second), 10*time.Second, 10*time.Second); got != 1 {
		t.Errorf("second press fired %d times, want 1", got)
	}
}

func TestMonitor_ReleaseRestartsTiming(t *testing.T) {
	var b gpio.Button
	m := NewMonitor(&b)
	start := time.Unix(1000, 0)
	hold := 10 * time.Second

	holdFor(m, &b, start, 9800*time.Millisecond, hold)
	b.Release()
	m.Check(start.Add(10*time.Second), hold)
	if m.Held(start.Add(10*time.Second)) != 0 {
		t.Error("Held() after release should be zero")
	}

	b.Press()
	if m.Check(start.Add(10200*time.Millisecond), hold) {
		t.Error("a new press must not inherit the previous hold time")
	}
}

func TestMonitor_UnreadableInputIsReleased(t *testing.T) {
	m := NewMonitor(brokenInput{})
	start := time.Unix(0, 0)

	for d := time.Duration(0); d <= 20*time.Second; d += tick {
		if m.Check(start.Add(d), time.Second) {
			t.Fatal("an unreadable input must never trigger a reset")
		}
	}
}
