// Package buzzer drives the kiosk's active buzzer for acoustic feedback.
package buzzer

import (
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/punchclock/terminal/utils"
)

// Pin is the single output line driving the buzzer.
type Pin interface {
	Set(on bool) error
}

type gpioPin struct {
	pin gpio.PinOut
}

func (p gpioPin) Set(on bool) error {
	if on {
		return p.pin.Out(gpio.High)
	}
	return p.pin.Out(gpio.Low)
}

// Buzzer plays short beep patterns. All patterns run asynchronously and are
// serialized so two scans in quick succession do not garble the tones.
// A disabled buzzer is a no-op.
type Buzzer struct {
	pin     Pin
	enabled bool

	mu    sync.Mutex
	sleep func(time.Duration)
}

// New resolves the GPIO pin by name and returns a ready buzzer.
// When the pin cannot be resolved the buzzer is disabled, not an error:
// the terminal works silently on hardware without one.
func New(pinName string, enabled bool) *Buzzer {
	b := &Buzzer{sleep: time.Sleep}
	if !enabled {
		return b
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("buzzer pin %s not found, running silent", pinName)
		}
		return b
	}
	if err := pin.Out(gpio.Low); err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("buzzer pin %s setup failed: %v, running silent", pinName, err)
		}
		return b
	}

	b.pin = gpioPin{pin: pin}
	b.enabled = true
	return b
}

// NewWithPin builds a buzzer over an arbitrary pin. Used by tests and diagnostics.
func NewWithPin(pin Pin, sleep func(time.Duration)) *Buzzer {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Buzzer{pin: pin, enabled: pin != nil, sleep: sleep}
}

// beep drives the pin high for the duration. Caller holds the mutex.
func (b *Buzzer) beep(d time.Duration) {
	if err := b.pin.Set(true); err != nil {
		return
	}
	b.sleep(d)
	_ = b.pin.Set(false)
}

func (b *Buzzer) play(steps ...time.Duration) {
	if !b.enabled {
		return
	}
	go func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		// steps alternate: beep, pause, beep, pause, ...
		for i, d := range steps {
			if i%2 == 0 {
				b.beep(d)
			} else {
				b.sleep(d)
			}
		}
	}()
}

// Success: two short beeps, played at startup.
func (b *Buzzer) Success() {
	b.play(100*time.Millisecond, 100*time.Millisecond, 100*time.Millisecond)
}

// Error: one long beep.
func (b *Buzzer) Error() {
	b.play(500 * time.Millisecond)
}

// Warning: three very short beeps, e.g. for an unexpected punch result.
func (b *Buzzer) Warning() {
	b.play(80*time.Millisecond, 80*time.Millisecond, 80*time.Millisecond, 80*time.Millisecond, 80*time.Millisecond)
}

// ClockIn: ascending double beep.
func (b *Buzzer) ClockIn() {
	b.play(100*time.Millisecond, 50*time.Millisecond, 150*time.Millisecond)
}

// ClockOut: descending double beep.
func (b *Buzzer) ClockOut() {
	b.play(150*time.Millisecond, 50*time.Millisecond, 100*time.Millisecond)
}

// Registration: confirmation after a badge was submitted for registration.
func (b *Buzzer) Registration() {
	b.play(100*time.Millisecond, 100*time.Millisecond, 100*time.Millisecond)
}

// Admin: single chirp when the admin badge is recognized.
func (b *Buzzer) Admin() {
	b.play(60 * time.Millisecond)
}

// Close forces the pin low. Pending patterns finish first.
func (b *Buzzer) Close() {
	if !b.enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.pin.Set(false)
}
