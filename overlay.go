package perch

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Overlay is the scene context: it owns the node tree, camera, renderer,
// tweens, clock, and the anchored assets. All methods must be called from a
// single goroutine (Ebitengine's update/draw goroutine when run through
// Run). Only asset fetching and decoding happen elsewhere.
type Overlay struct {
	cfg      Config
	root     *Node
	camera   *Camera
	renderer *Renderer
	tweens   *Tweener
	layout   Layout
	loader   *Loader
	clock    *Clock
	viewport Viewport

	assets []*Asset

	// OnError, when set, receives every error the overlay recovers from:
	// failed loads, unresolvable anchors, and degenerate projections.
	OnError func(asset string, err error)

	frame           uint64
	debug           bool
	hud             fpsHUD
	screenshotQueue []string
	injectQueue     []syntheticResize
	testRunner      *TestRunner
}

// New creates an overlay sized to cfg.Width x cfg.Height. A nil layout uses
// DefaultLayout. A nil loader leaves added assets Unloaded.
func New(cfg Config, layout Layout, loader *Loader) *Overlay {
	if layout == nil {
		layout = DefaultLayout()
	}
	vp := Viewport{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	aspect := 1.0
	if vp.Valid() {
		aspect = vp.Aspect()
	}

	cam := NewCamera(cfg.Fov, aspect, cfg.Near, cfg.Far)
	p := cfg.CameraPosition
	cam.Position[0], cam.Position[1], cam.Position[2] = p[0], p[1], p[2]

	r := NewRenderer()
	r.SetSize(cfg.Width, cfg.Height)

	o := &Overlay{
		cfg:      cfg,
		root:     NewNode("root"),
		camera:   cam,
		renderer: r,
		tweens:   NewTweener(),
		layout:   layout,
		loader:   loader,
		clock:    NewClock(nil),
		viewport: vp,
	}
	o.SetDebugMode(cfg.Debug)
	return o
}

// AddAsset registers an asset and starts loading it. Loads complete in any
// order; each asset is activated on the first Update after its load
// finishes.
func (o *Overlay) AddAsset(spec AssetSpec) *Asset {
	a := newAsset(spec)
	o.assets = append(o.assets, a)
	if o.loader != nil {
		o.loader.load(a)
	}
	return a
}

// Update advances the overlay by one tick. It activates finished loads and
// applies at most one injected resize. Tweens and animation players then
// advance by the clock delta, and drift motions are re-armed. Assets that
// are not Ready are skipped.
func (o *Overlay) Update() error {
	if o.loader != nil {
		for _, r := range o.loader.poll() {
			o.finishLoad(r)
		}
	}
	if o.testRunner != nil {
		o.testRunner.step(o)
	}
	o.processInjectedResize()

	elapsed, delta := o.clock.Tick()

	o.tweens.Update(delta)
	for _, a := range o.assets {
		if a.Ready() {
			a.player.Update(delta)
		}
	}
	for _, a := range o.assets {
		if a.Ready() && a.spec.Drift != nil {
			o.drift(a, elapsed)
		}
	}
	if o.debug {
		o.hud.update(delta, o)
	}

	o.frame++
	return nil
}

// Draw renders the scene through the camera onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	o.renderer.Render(screen, o.root, o.camera)
	if o.debug {
		o.debugLog()
	}
	o.flushScreenshots(screen)
	if o.debug {
		o.hud.draw(screen, o.renderer.PixelRatio())
	}
}

// Resize applies a new viewport size: the camera aspect, the renderer size
// and pixel ratio (capped at Config.MaxPixelRatio), and a fresh anchor
// placement for every Ready asset. Entrance motions are not replayed.
func (o *Overlay) Resize(width, height int, deviceScale float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize %dx%d: %w", width, height, ErrInvalidViewport)
	}
	o.viewport = Viewport{Width: float64(width), Height: float64(height)}
	o.camera.Aspect = o.viewport.Aspect()
	o.renderer.SetSize(width, height)
	o.renderer.SetPixelRatio(math.Min(deviceScale, o.cfg.MaxPixelRatio))
	o.Reposition()
	return nil
}

// Reposition re-resolves every Ready asset's anchor and moves the asset
// there. Position tweens in flight on the asset are stopped first, so the
// new placement holds until the next drift re-arm. Assets whose anchor
// cannot be resolved keep their current position.
func (o *Overlay) Reposition() {
	for _, a := range o.assets {
		if !a.Ready() {
			continue
		}
		for axis := AxisX; axis <= AxisZ; axis++ {
			o.tweens.KillField(a.node.PositionField(axis))
		}
		if err := o.place(a); err != nil {
			o.report(a.Name(), err)
		}
	}
}

// place moves a's node to its anchor on the z=0 plane and applies its
// rotation offset.
func (o *Overlay) place(a *Asset) error {
	rule := a.spec.Anchor
	if rule == nil {
		rule = FixedAnchor(0.5, 0.5)
	}
	pt, err := rule(o.viewport, o.layout)
	if err != nil {
		return fmt.Errorf("asset %s: %w", a.Name(), err)
	}
	pos, err := o.camera.ScreenToWorld(pt.X, pt.Y, o.viewport)
	if err != nil {
		return fmt.Errorf("asset %s: %w", a.Name(), err)
	}
	a.node.Position = pos
	a.node.SetRotationZ(a.spec.RotationZ)
	return nil
}

func (o *Overlay) finishLoad(r loadResult) {
	a := r.asset
	if r.err != nil {
		o.fail(a, r.err)
		return
	}
	if err := o.activate(a, r.decoded); err != nil {
		o.fail(a, err)
	}
}

// activate inserts a decoded asset into the scene: wrapper removal, scale,
// visibility, anchored placement, entrance motion, and clip playback.
func (o *Overlay) activate(a *Asset, d *Decoded) error {
	spec := a.spec
	if spec.ClipIndex < 0 || spec.ClipIndex >= len(d.Clips) {
		return fmt.Errorf("asset %s: clip %d of %d: %w", a.Name(), spec.ClipIndex, len(d.Clips), ErrClipIndex)
	}

	root := d.Root
	if spec.StripWrapper && root.NumChildren() > 0 {
		root.RemoveChildAt(0)
	}
	if spec.Scale != 0 {
		root.SetUniformScale(spec.Scale)
	}
	root.Visible = !spec.Reveal.Hidden
	a.node = root

	if err := o.place(a); err != nil {
		o.report(a.Name(), err)
	}
	o.root.AddChild(root)

	if e := spec.Entrance; e != nil {
		for _, av := range e.From {
			o.tweens.From(root, root.PositionField(av.Axis), av.Value, e.Duration, e.Delay, e.Ease)
		}
	}
	if spec.Reveal.Hidden && o.viewport.Width > spec.Reveal.MinWidth {
		o.tweens.Delay(spec.Reveal.Delay, func() {
			root.Visible = true
		})
	}

	clip := d.Clips[spec.ClipIndex]
	a.player = NewAnimationPlayer(root)
	a.action = a.player.ClipAction(clip).Play()
	a.state = AssetReady

	Logger().Info("perch: asset ready", "asset", a.Name(), "clip", clip.Name)
	return nil
}

// drift re-arms the asset's drift tweens once its delay has elapsed.
func (o *Overlay) drift(a *Asset, elapsed float64) {
	d := a.spec.Drift
	if elapsed < d.Delay {
		return
	}
	n := a.node
	phase := elapsed * d.Frequency
	o.tweens.To(n, n.PositionField(AxisX), math.Sin(phase)*d.AmplitudeX, d.Duration, 0, d.Ease)
	o.tweens.To(n, n.PositionField(AxisZ), math.Cos(phase)*d.AmplitudeZ, d.Duration, 0, d.Ease)
}

func (o *Overlay) fail(a *Asset, err error) {
	a.state = AssetFailed
	a.err = err
	o.report(a.Name(), err)
}

// report logs a recovered error and forwards it to OnError.
func (o *Overlay) report(asset string, err error) {
	Logger().Warn("perch: recovered error", "asset", asset, "err", err)
	if o.OnError != nil {
		o.OnError(asset, err)
	}
}

// Root returns the scene root.
func (o *Overlay) Root() *Node {
	return o.root
}

// Camera returns the overlay camera.
func (o *Overlay) Camera() *Camera {
	return o.camera
}

// Renderer returns the overlay renderer.
func (o *Overlay) Renderer() *Renderer {
	return o.renderer
}

// Tweens returns the overlay's tween scheduler.
func (o *Overlay) Tweens() *Tweener {
	return o.tweens
}

// Viewport returns the current viewport size.
func (o *Overlay) Viewport() Viewport {
	return o.viewport
}

// Layout returns the page layout source.
func (o *Overlay) Layout() Layout {
	return o.layout
}

// Config returns the configuration the overlay was created with.
func (o *Overlay) Config() Config {
	return o.cfg
}

// Assets returns the registered assets. The returned slice MUST NOT be mutated.
func (o *Overlay) Assets() []*Asset {
	return o.assets
}

// Asset returns the asset with the given name, or nil.
func (o *Overlay) Asset(name string) *Asset {
	for _, a := range o.assets {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

// SetClock replaces the frame clock. Intended for deterministic hosts and
// tests; call before the first Update.
func (o *Overlay) SetClock(c *Clock) {
	o.clock = c
}

// Frame returns the number of completed ticks.
func (o *Overlay) Frame() uint64 {
	return o.frame
}

// SetDebugMode enables or disables per-frame statistics logged at debug
// level and the on-screen FPS panel.
func (o *Overlay) SetDebugMode(enabled bool) {
	o.debug = enabled
}

// Close stops in-flight asset loads and disposes every activated asset's
// subtree. Tweens owned by those subtrees stop on the next Update. Close may
// be called more than once.
func (o *Overlay) Close() {
	if o.loader != nil {
		o.loader.Close()
	}
	for _, a := range o.assets {
		if a.node != nil {
			a.node.Dispose()
		}
	}
}
