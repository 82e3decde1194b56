package perch

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// hudRefresh is how often the debug HUD text is redrawn, in seconds.
const hudRefresh = 0.5

// fpsHUD is the debug-mode panel in the top-left corner showing frame rates
// and asset states.
type fpsHUD struct {
	img   *ebiten.Image
	since float64
	text  string
}

// update refreshes the HUD text about twice a second.
func (h *fpsHUD) update(dt float64, o *Overlay) {
	h.since += dt
	if h.text != "" && h.since < hudRefresh {
		return
	}
	h.since = 0

	var b strings.Builder
	fmt.Fprintf(&b, "FPS: %.1f\nTPS: %.1f\n", ebiten.ActualFPS(), ebiten.ActualTPS())
	for _, a := range o.assets {
		fmt.Fprintf(&b, "%s: %s\n", a.Name(), a.State())
	}
	h.text = b.String()
}

// draw paints the HUD onto screen, scaled by the renderer pixel ratio.
func (h *fpsHUD) draw(screen *ebiten.Image, pixelRatio float64) {
	if h.text == "" {
		return
	}
	if h.img == nil {
		h.img = ebiten.NewImage(160, 16*8)
	}
	h.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(h.img, h.text)

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(pixelRatio, pixelRatio)
	screen.DrawImage(h.img, &op)
}
