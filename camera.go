package perch

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// parallelEpsilon is the smallest |direction.z| ScreenToWorld accepts before
// treating the ray as parallel to the z=0 plane.
const parallelEpsilon = 1e-9

// cameraParams is the subset of Camera state the cached matrices depend on.
type cameraParams struct {
	position mgl64.Vec3
	rotation mgl64.Quat
	fov      float64
	aspect   float64
	near     float64
	far      float64
}

// Camera is a perspective camera. It looks down its local -z axis; with an
// identity Rotation that is world -z.
type Camera struct {
	// Position is the world-space eye position.
	Position mgl64.Vec3
	// Rotation orients the camera in world space.
	Rotation mgl64.Quat
	// Fov is the vertical field of view in degrees.
	Fov float64
	// Aspect is viewport width divided by height.
	Aspect float64
	// Near and Far are the clip plane distances.
	Near, Far float64

	cached      cameraParams
	valid       bool
	projection  mgl64.Mat4
	view        mgl64.Mat4
	viewProj    mgl64.Mat4
	invViewProj mgl64.Mat4
}

// NewCamera creates a camera at the origin with an identity rotation.
func NewCamera(fov, aspect, near, far float64) *Camera {
	return &Camera{
		Rotation: mgl64.QuatIdent(),
		Fov:      fov,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
}

func (c *Camera) params() cameraParams {
	return cameraParams{
		position: c.Position,
		rotation: c.Rotation,
		fov:      c.Fov,
		aspect:   c.Aspect,
		near:     c.Near,
		far:      c.Far,
	}
}

// computeMatrices recomputes the cached matrices when any public field has
// changed since the last call.
//
// view        = Inverse(Translate(Position) * Rotate(Rotation))
// viewProj    = Perspective(Fov, Aspect, Near, Far) * view
func (c *Camera) computeMatrices() {
	p := c.params()
	if c.valid && p == c.cached {
		return
	}
	c.cached = p
	c.valid = true

	c.projection = mgl64.Perspective(mgl64.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
	c.view = c.Rotation.Inverse().Mat4().Mul4(
		mgl64.Translate3D(-c.Position[0], -c.Position[1], -c.Position[2]))
	c.viewProj = c.projection.Mul4(c.view)
	c.invViewProj = c.viewProj.Inv()
}

// Projection returns the projection matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	c.computeMatrices()
	return c.projection
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	c.computeMatrices()
	return c.view
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl64.Mat4 {
	c.computeMatrices()
	return c.viewProj
}

// ScreenToWorld maps a viewport point to the point on the world plane z=0
// seen through that pixel. x and y are not clamped to the viewport.
//
// The point is unprojected at normalized depth 0.5, turned into a unit ray
// from the camera position, and intersected with z=0. Returns
// ErrParallelRay when the ray never meets the plane.
func (c *Camera) ScreenToWorld(x, y float64, vp Viewport) (mgl64.Vec3, error) {
	if !vp.Valid() {
		return mgl64.Vec3{}, fmt.Errorf("screen to world %vx%v: %w", vp.Width, vp.Height, ErrInvalidViewport)
	}
	c.computeMatrices()

	nx := (x/vp.Width)*2 - 1
	ny := -(y/vp.Height)*2 + 1
	onRay := mgl64.TransformCoordinate(mgl64.Vec3{nx, ny, 0.5}, c.invViewProj)

	dir := onRay.Sub(c.Position).Normalize()
	if math.IsNaN(dir[2]) || math.Abs(dir[2]) < parallelEpsilon {
		return mgl64.Vec3{}, ErrParallelRay
	}

	t := -c.Position[2] / dir[2]
	return c.Position.Add(dir.Mul(t)), nil
}

// WorldToScreen projects a world point into viewport pixels. depth is the
// normalized device depth in [-1, 1] for points between the clip planes.
// ok is false for points behind the camera.
func (c *Camera) WorldToScreen(p mgl64.Vec3, vp Viewport) (screen Vec2, depth float64, ok bool) {
	c.computeMatrices()
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return Vec2{}, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	return ndcToScreen(ndc[0], ndc[1], vp.Width, vp.Height), ndc[2], true
}

// ndcToScreen converts normalized device coordinates to pixels in a w x h
// area with the origin at the top-left.
func ndcToScreen(nx, ny, w, h float64) Vec2 {
	return Vec2{
		X: (nx + 1) / 2 * w,
		Y: (1 - ny) / 2 * h,
	}
}
