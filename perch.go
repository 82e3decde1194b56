package perch

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default mesh tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D point in viewport pixels. The origin is the top-left corner
// of the viewport with Y increasing downward.
type Vec2 struct {
	X, Y float64
}

// WhitePixel is a 1x1 white image used as the source for untextured meshes.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.toRGBA())
}

// Rect is an axis-aligned rectangle in viewport pixels. For layout boxes X is
// the left edge and Y the top edge, as reported by the page relative to the
// current scroll position.
type Rect struct {
	X, Y, Width, Height float64
}

// Viewport is the size of the visible drawing area in device-independent
// pixels. Both dimensions must be positive.
type Viewport struct {
	Width, Height float64
}

// Valid reports whether both dimensions are positive.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Aspect returns Width/Height. Callers must check Valid first.
func (v Viewport) Aspect() float64 {
	return v.Width / v.Height
}

// Axis selects one component of a 3D position.
type Axis uint8

const (
	AxisX Axis = iota // horizontal, positive to the right
	AxisY             // vertical, positive up
	AxisZ             // depth, positive toward the camera
)

// String returns the lowercase axis letter.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}
