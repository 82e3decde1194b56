package perch

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenToReachesEnd(t *testing.T) {
	tw := NewTweener()
	var v float64
	tw.To(nil, &v, 10, 1, 0, ease.Linear)

	tw.Update(0.5)
	if !approxEqual(v, 5, 1e-4) {
		t.Errorf("halfway value = %v, want 5", v)
	}
	tw.Update(0.6)
	if v != 10 {
		t.Errorf("final value = %v, want exactly 10", v)
	}
	if tw.Active() != 0 {
		t.Errorf("Active = %d, want 0", tw.Active())
	}
}

func TestTweenToStartsFromValueAtStart(t *testing.T) {
	tw := NewTweener()
	v := 1.0
	tw.To(nil, &v, 3, 1, 1, ease.Linear)

	// Changed during the delay; the tween starts from here.
	v = 2
	tw.Update(1)
	tw.Update(0.5)
	if !approxEqual(v, 2.5, 1e-4) {
		t.Errorf("value = %v, want 2.5", v)
	}
}

func TestTweenFromJumpsThenReturns(t *testing.T) {
	tw := NewTweener()
	v := 4.0
	tw.From(nil, &v, -2, 5, 2, nil)

	if v != -2 {
		t.Fatalf("value after From = %v, want -2", v)
	}
	tw.Update(1.5)
	if v != -2 {
		t.Errorf("value during delay = %v, want -2", v)
	}
	for range 20 {
		tw.Update(0.5)
	}
	if v != 4 {
		t.Errorf("final value = %v, want 4", v)
	}
}

func TestTweenDelayCarriesOvershoot(t *testing.T) {
	tw := NewTweener()
	var v float64
	tw.To(nil, &v, 1, 1, 0.5, ease.Linear)

	tw.Update(0.75)
	if !approxEqual(v, 0.25, 1e-4) {
		t.Errorf("value = %v, want 0.25", v)
	}
}

func TestTweenLaterIssueWins(t *testing.T) {
	tw := NewTweener()
	var v float64
	tw.To(nil, &v, 10, 1, 0, ease.Linear)
	tw.To(nil, &v, -10, 1, 0, ease.Linear)

	tw.Update(2)
	if v != -10 {
		t.Errorf("value = %v, want -10", v)
	}
}

func TestTweenKillField(t *testing.T) {
	tw := NewTweener()
	var a, b float64
	tw.To(nil, &a, 10, 1, 0, ease.Linear)
	tw.To(nil, &b, 10, 1, 0, ease.Linear)
	tw.Update(0.5)

	tw.KillField(&a)
	held := a
	tw.Update(1)
	if a != held {
		t.Errorf("killed field moved from %v to %v", held, a)
	}
	if b != 10 {
		t.Errorf("other field = %v, want 10", b)
	}
}

func TestTweenStopsOnDisposedOwner(t *testing.T) {
	tw := NewTweener()
	n := NewNode("n")
	tw.To(n, n.PositionField(AxisX), 10, 1, 0, ease.Linear)
	tw.Update(0.5)

	n.Dispose()
	held := n.Position[0]
	tw.Update(0.5)
	if n.Position[0] != held {
		t.Errorf("disposed node moved from %v to %v", held, n.Position[0])
	}
	if tw.Active() != 0 {
		t.Errorf("Active = %d, want 0", tw.Active())
	}
}

func TestTweenerDelay(t *testing.T) {
	tw := NewTweener()
	fired := 0
	tw.Delay(2, func() { fired++ })

	tw.Update(1.5)
	if fired != 0 {
		t.Fatal("fired early")
	}
	tw.Update(0.5)
	tw.Update(5)
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
	if tw.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", tw.Pending())
	}
}

func TestTweenerDelayScheduledFromCallback(t *testing.T) {
	tw := NewTweener()
	var order []int
	tw.Delay(1, func() {
		order = append(order, 1)
		tw.Delay(1, func() { order = append(order, 2) })
	})

	tw.Update(1)
	if len(order) != 1 || tw.Pending() != 1 {
		t.Fatalf("order = %v, pending = %d", order, tw.Pending())
	}
	tw.Update(1)
	if len(order) != 2 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}
