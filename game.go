package perch

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Game adapts an Overlay to ebiten.Game. Ebitengine calls Layout before
// every frame; a change in outside size or device scale is forwarded to
// Overlay.Resize.
type Game struct {
	overlay *Overlay

	lastW, lastH int
	lastScale    float64
}

// NewGame wraps o for use with ebiten.RunGame.
func NewGame(o *Overlay) *Game {
	return &Game{overlay: o}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	return g.overlay.Update()
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.overlay.Draw(screen)
}

// Layout implements ebiten.Game. The returned screen size is the renderer's
// buffer size, so the overlay draws at up to MaxPixelRatio physical pixels
// per logical pixel.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	g.resize(outsideWidth, outsideHeight, scale)
	return g.overlay.renderer.BufferSize()
}

// resize forwards a size or scale change to the overlay.
func (g *Game) resize(w, h int, scale float64) {
	if w == g.lastW && h == g.lastH && scale == g.lastScale {
		return
	}
	g.lastW, g.lastH, g.lastScale = w, h, scale
	if err := g.overlay.Resize(w, h, scale); err != nil {
		// Minimized windows report 0x0; the overlay keeps its last good size.
		g.overlay.report("", err)
	}
}

// Run opens a window configured from the overlay's Config and runs the frame
// loop until the window closes. In a browser the canvas fills the page.
func Run(o *Overlay) error {
	cfg := o.Config()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.Transparent {
		ebiten.SetWindowDecorated(false)
	}
	defer o.Close()
	return ebiten.RunGameWithOptions(NewGame(o), &ebiten.RunGameOptions{
		ScreenTransparent: cfg.Transparent,
	})
}
