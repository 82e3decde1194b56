package perch

import (
	"errors"
	"strings"
	"testing"
)

func TestFixedAnchor(t *testing.T) {
	tests := []struct {
		vp     Viewport
		fx, fy float64
		want   Vec2
	}{
		{Viewport{1920, 1080}, 0.95, 0.45, Vec2{1824, 486}},
		{Viewport{800, 600}, 0.95, 0.45, Vec2{760, 270}},
		{Viewport{800, 600}, 0.5, 0.5, Vec2{400, 300}},
		{Viewport{800, 600}, 0, 0, Vec2{0, 0}},
	}
	for _, tt := range tests {
		got, err := FixedAnchor(tt.fx, tt.fy)(tt.vp, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !approxEqual(got.X, tt.want.X, epsilon) || !approxEqual(got.Y, tt.want.Y, epsilon) {
			t.Errorf("FixedAnchor(%v, %v) on %v = %v, want %v", tt.fx, tt.fy, tt.vp, got, tt.want)
		}
	}
}

func TestElementAnchor(t *testing.T) {
	l := NewStaticLayout()
	l.Set(".signature", Rect{X: 100, Y: 700, Width: 400, Height: 40})
	l.Set("#er", Rect{X: 300, Y: 200, Width: 20, Height: 20})

	rule := ElementAnchor(".signature", "#er", 0.028)
	vp := Viewport{Width: 1920, Height: 1080}

	got, err := rule(vp, l)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(got.X, 300, 1e-9) || !approxEqual(got.Y, 700+0.028*1080, 1e-9) {
		t.Errorf("anchor = %v, want (300, %v)", got, 700+0.028*1080)
	}

	// Scrolling moves the document-relative top.
	l.SetScrollY(150)
	got, _ = rule(vp, l)
	if !approxEqual(got.Y, 850+0.028*1080, 1e-9) {
		t.Errorf("scrolled anchor y = %v, want %v", got.Y, 850+0.028*1080)
	}
}

func TestElementAnchorReadsLiveLayout(t *testing.T) {
	l := NewStaticLayout()
	l.Set(".signature", Rect{Y: 400})
	l.Set("#er", Rect{X: 50})
	rule := ElementAnchor(".signature", "#er", 0)
	vp := Viewport{Width: 800, Height: 600}

	first, _ := rule(vp, l)
	l.Set("#er", Rect{X: 120})
	second, _ := rule(vp, l)
	if first.X != 50 || second.X != 120 {
		t.Errorf("x = %v then %v, want 50 then 120", first.X, second.X)
	}
}

func TestElementAnchorMissingElement(t *testing.T) {
	l := NewStaticLayout()
	l.Set(".signature", Rect{Y: 400})
	vp := Viewport{Width: 800, Height: 600}

	_, err := ElementAnchor(".signature", "#er", 0)(vp, l)
	if !errors.Is(err, ErrElementNotFound) {
		t.Fatalf("err = %v, want ErrElementNotFound", err)
	}
	if !strings.Contains(err.Error(), "#er") {
		t.Errorf("err = %q, want it to name the selector", err)
	}

	_, err = ElementAnchor(".missing", "#er", 0)(vp, l)
	if !errors.Is(err, ErrElementNotFound) || !strings.Contains(err.Error(), ".missing") {
		t.Errorf("err = %v, want ErrElementNotFound naming .missing", err)
	}

	if _, err := ElementAnchor(".signature", "#er", 0)(vp, nil); !errors.Is(err, ErrElementNotFound) {
		t.Errorf("nil layout: err = %v, want ErrElementNotFound", err)
	}
}

func TestStaticLayoutRemove(t *testing.T) {
	l := NewStaticLayout()
	l.Set("#a", Rect{X: 1})
	l.Remove("#a")
	if _, ok := l.BoundingBox("#a"); ok {
		t.Error("removed element still found")
	}
}
