package perch

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// DefaultEase is used when a tween is issued without an easing function.
var DefaultEase ease.TweenFunc = ease.OutQuad

// tween drives a single float64 field. The gween tween is created when the
// delay runs out, so a To tween starts from whatever value the field holds
// at that moment.
type tween struct {
	field    *float64
	owner    *Node
	begin    float64
	end      float64
	hasBegin bool
	duration float32
	wait     float64
	fn       ease.TweenFunc
	tw       *gween.Tween
	done     bool
}

// delayedCall runs fn once after remaining seconds of Update time.
type delayedCall struct {
	remaining float64
	fn        func()
}

// Tweener is a fire-and-forget scheduler of eased float64 interpolations.
// Tweens run on the Tweener's own clock, advanced by Update. Several tweens
// may target the same field; they are applied in the order they were issued,
// so the most recently issued tween wins each frame.
//
// A Tweener is not safe for concurrent use.
type Tweener struct {
	tweens []*tween
	calls  []*delayedCall
}

// NewTweener creates an empty Tweener.
func NewTweener() *Tweener {
	return &Tweener{}
}

// To animates *field from its value when the tween starts to end over
// duration seconds, after delay seconds. owner, when non-nil, stops the tween
// once the node is disposed.
func (t *Tweener) To(owner *Node, field *float64, end, duration, delay float64, fn ease.TweenFunc) {
	t.add(&tween{
		field:    field,
		owner:    owner,
		end:      end,
		duration: float32(duration),
		wait:     delay,
		fn:       fn,
	})
}

// From sets *field to begin immediately and animates it back to the value it
// held before the call over duration seconds, after delay seconds.
func (t *Tweener) From(owner *Node, field *float64, begin, duration, delay float64, fn ease.TweenFunc) {
	end := *field
	*field = begin
	t.add(&tween{
		field:    field,
		owner:    owner,
		begin:    begin,
		end:      end,
		hasBegin: true,
		duration: float32(duration),
		wait:     delay,
		fn:       fn,
	})
}

func (t *Tweener) add(tw *tween) {
	if tw.fn == nil {
		tw.fn = DefaultEase
	}
	t.tweens = append(t.tweens, tw)
}

// Delay calls fn once after seconds of Update time.
func (t *Tweener) Delay(seconds float64, fn func()) {
	t.calls = append(t.calls, &delayedCall{remaining: seconds, fn: fn})
}

// KillField stops every pending or running tween that writes field. The
// field keeps its current value.
func (t *Tweener) KillField(field *float64) {
	for _, tw := range t.tweens {
		if tw.field == field {
			tw.done = true
		}
	}
	t.compact()
}

// Active returns the number of pending or running tweens.
func (t *Tweener) Active() int {
	return len(t.tweens)
}

// Pending returns the number of delayed calls that have not fired.
func (t *Tweener) Pending() int {
	return len(t.calls)
}

// Update advances every tween and delayed call by dt seconds.
func (t *Tweener) Update(dt float64) {
	for _, tw := range t.tweens {
		tw.update(dt)
	}
	t.compact()

	if len(t.calls) == 0 {
		return
	}
	// Calls may schedule new calls; only the ones present now are advanced.
	calls := t.calls
	t.calls = nil
	var keep []*delayedCall
	for _, c := range calls {
		c.remaining -= dt
		if c.remaining <= 0 {
			c.fn()
			continue
		}
		keep = append(keep, c)
	}
	t.calls = append(keep, t.calls...)
}

func (tw *tween) update(dt float64) {
	if tw.done {
		return
	}
	if tw.owner != nil && tw.owner.IsDisposed() {
		tw.done = true
		return
	}
	if tw.wait > 0 {
		tw.wait -= dt
		if tw.wait > 0 {
			return
		}
		// Carry the overshoot into the first step.
		dt = -tw.wait
		tw.wait = 0
	}
	if tw.tw == nil {
		begin := tw.begin
		if !tw.hasBegin {
			begin = *tw.field
		}
		tw.tw = gween.New(float32(begin), float32(tw.end), tw.duration, tw.fn)
	}
	val, finished := tw.tw.Update(float32(dt))
	if finished {
		// Land exactly on the target rather than its float32 rounding.
		*tw.field = tw.end
		tw.done = true
		return
	}
	*tw.field = float64(val)
}

// compact drops finished tweens, preserving issue order.
func (t *Tweener) compact() {
	n := 0
	for _, tw := range t.tweens {
		if !tw.done {
			t.tweens[n] = tw
			n++
		}
	}
	for i := n; i < len(t.tweens); i++ {
		t.tweens[i] = nil
	}
	t.tweens = t.tweens[:n]
}
