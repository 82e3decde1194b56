package perch

import "fmt"

// Layout is a read-only view of the host page's element geometry. Every call
// reads live layout; implementations must not cache between calls.
type Layout interface {
	// BoundingBox returns the viewport-relative box of the first element
	// matching selector. ok is false when no element matches.
	BoundingBox(selector string) (box Rect, ok bool)
	// ScrollY returns the document's vertical scroll offset in pixels.
	ScrollY() float64
}

// AnchorRule computes the viewport point an asset tracks.
type AnchorRule func(vp Viewport, layout Layout) (Vec2, error)

// FixedAnchor returns a rule anchored at fixed fractions of the viewport,
// independent of page layout.
func FixedAnchor(fx, fy float64) AnchorRule {
	return func(vp Viewport, _ Layout) (Vec2, error) {
		return Vec2{X: vp.Width * fx, Y: vp.Height * fy}, nil
	}
}

// ElementAnchor returns a rule that follows two page elements: the vertical
// coordinate comes from the document-relative top of topSelector plus nudge
// (a fraction of the viewport height), the horizontal coordinate from the
// left edge of leftSelector.
func ElementAnchor(topSelector, leftSelector string, nudge float64) AnchorRule {
	return func(vp Viewport, layout Layout) (Vec2, error) {
		if layout == nil {
			return Vec2{}, fmt.Errorf("anchor %q: no layout: %w", topSelector, ErrElementNotFound)
		}
		top, ok := layout.BoundingBox(topSelector)
		if !ok {
			return Vec2{}, fmt.Errorf("anchor %q: %w", topSelector, ErrElementNotFound)
		}
		left, ok := layout.BoundingBox(leftSelector)
		if !ok {
			return Vec2{}, fmt.Errorf("anchor %q: %w", leftSelector, ErrElementNotFound)
		}

		fy := (top.Y+layout.ScrollY())/vp.Height + nudge
		fx := left.X / vp.Width
		return Vec2{X: vp.Width * fx, Y: vp.Height * fy}, nil
	}
}

// StaticLayout is a Layout backed by boxes set by the host. It stands in for
// a page on native builds and in tests. Not safe for concurrent use.
type StaticLayout struct {
	boxes  map[string]Rect
	scroll float64
}

// NewStaticLayout creates an empty layout with no elements.
func NewStaticLayout() *StaticLayout {
	return &StaticLayout{boxes: make(map[string]Rect)}
}

// Set places an element matching selector at box.
func (l *StaticLayout) Set(selector string, box Rect) {
	l.boxes[selector] = box
}

// Remove deletes the element matching selector.
func (l *StaticLayout) Remove(selector string) {
	delete(l.boxes, selector)
}

// SetScrollY sets the vertical scroll offset.
func (l *StaticLayout) SetScrollY(y float64) {
	l.scroll = y
}

// BoundingBox implements Layout.
func (l *StaticLayout) BoundingBox(selector string) (Rect, bool) {
	box, ok := l.boxes[selector]
	return box, ok
}

// ScrollY implements Layout.
func (l *StaticLayout) ScrollY() float64 {
	return l.scroll
}
