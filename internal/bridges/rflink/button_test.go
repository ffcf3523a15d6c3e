package rflink

import (
	"testing"
	"time"
)

func TestDebouncer_Press(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(50*time.Millisecond, 0)
	d.Prime(false, start)

	// Bounce: pressed for less than the interval.
	if ev := d.Update(true, start.Add(10*time.Millisecond)); ev != ButtonNone {
		t.Fatalf("event = %v at first edge", ev)
	}
	if ev := d.Update(false, start.Add(20*time.Millisecond)); ev != ButtonNone {
		t.Fatalf("event = %v on bounce", ev)
	}

	// Stable press.
	d.Update(true, start.Add(30*time.Millisecond))
	if ev := d.Update(true, start.Add(60*time.Millisecond)); ev != ButtonNone {
		t.Fatalf("event = %v before interval elapsed", ev)
	}
	if ev := d.Update(true, start.Add(80*time.Millisecond)); ev != ButtonPress {
		t.Fatalf("event = %v, want ButtonPress", ev)
	}
	if !d.Pressed() {
		t.Error("Pressed() = false after press")
	}

	// Held: no repeat, and long press disabled.
	if ev := d.Update(true, start.Add(time.Minute)); ev != ButtonNone {
		t.Errorf("event = %v while held", ev)
	}

	// Release, then a second press fires again.
	d.Update(false, start.Add(time.Minute+time.Millisecond))
	d.Update(false, start.Add(time.Minute+100*time.Millisecond))
	d.Update(true, start.Add(2*time.Minute))
	if ev := d.Update(true, start.Add(2*time.Minute+50*time.Millisecond)); ev != ButtonPress {
		t.Errorf("second press event = %v", ev)
	}
}

func TestDebouncer_LongPress(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(50*time.Millisecond, 10*time.Second)
	d.Prime(false, start)

	d.Update(true, start)
	if ev := d.Update(true, start.Add(50*time.Millisecond)); ev != ButtonPress {
		t.Fatalf("event = %v, want ButtonPress", ev)
	}
	if ev := d.Update(true, start.Add(5*time.Second)); ev != ButtonNone {
		t.Fatalf("event = %v before hold time", ev)
	}
	if ev := d.Update(true, start.Add(10*time.Second+50*time.Millisecond)); ev != ButtonLongPress {
		t.Fatalf("event = %v, want ButtonLongPress", ev)
	}
	if ev := d.Update(true, start.Add(30*time.Second)); ev != ButtonNone {
		t.Errorf("long press repeated: %v", ev)
	}
}

func TestDebouncer_PrimedPressedDoesNotFire(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(50*time.Millisecond, time.Second)
	d.Prime(true, start)

	for i := 1; i <= 5; i++ {
		if ev := d.Update(true, start.Add(time.Duration(i)*time.Second)); ev != ButtonNone {
			t.Fatalf("event = %v for button held at start", ev)
		}
	}
}
