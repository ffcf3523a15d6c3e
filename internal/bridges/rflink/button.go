package rflink

import "time"

// ButtonInput reads the raw state of the physical button.
// This is satisfied by *gpio.Button.
type ButtonInput interface {
	// Pressed returns true while the button is held down.
	Pressed() (bool, error)
}

// ButtonEvent is the result of feeding one sample to a Debouncer.
type ButtonEvent int

// Button events.
const (
	ButtonNone ButtonEvent = iota

	// ButtonPress fires once when a press becomes stable.
	ButtonPress

	// ButtonLongPress fires once when a stable press has been held for the
	// reset hold time.
	ButtonLongPress
)

// Debouncer turns raw button samples into press events.
// A level must be sampled unchanged for the debounce interval before it is
// accepted. A Debouncer is owned by one goroutine.
type Debouncer struct {
	interval time.Duration
	hold     time.Duration

	stable         bool
	candidate      bool
	candidateSince time.Time
	pressedSince   time.Time
	holdFired      bool
}

// NewDebouncer creates a debouncer.
//
// Parameters:
//   - interval: How long a level must be stable (50ms on RFLink gateways)
//   - hold: How long a press must last to raise ButtonLongPress; 0 disables it
func NewDebouncer(interval, hold time.Duration) *Debouncer {
	return &Debouncer{interval: interval, hold: hold}
}

// Prime sets the initial level without raising events, so a button held
// while the bridge starts is not reported as a press.
func (d *Debouncer) Prime(pressed bool, now time.Time) {
	d.stable = pressed
	d.candidate = pressed
	d.candidateSince = now
	d.pressedSince = now
	d.holdFired = pressed
}

// Update feeds one sample taken at now.
func (d *Debouncer) Update(pressed bool, now time.Time) ButtonEvent {
	if pressed != d.candidate {
		d.candidate = pressed
		d.candidateSince = now
	}

	if d.candidate != d.stable && now.Sub(d.candidateSince) >= d.interval {
		d.stable = d.candidate
		if d.stable {
			d.pressedSince = now
			d.holdFired = false
			return ButtonPress
		}
		return ButtonNone
	}

	if d.stable && !d.holdFired && d.hold > 0 && now.Sub(d.pressedSince) >= d.hold {
		d.holdFired = true
		return ButtonLongPress
	}
	return ButtonNone
}

// Pressed returns the debounced level.
func (d *Debouncer) Pressed() bool {
	return d.stable
}
