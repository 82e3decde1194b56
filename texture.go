package perch

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // glTF core texture format
	_ "image/png"  // glTF core texture format

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/webp" // EXT_texture_webp
)

// DecodeTexture decodes PNG, JPEG, or WebP bytes into an ebiten image.
func DecodeTexture(data []byte) (*ebiten.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode texture: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode texture: empty %s image", format)
	}
	return ebiten.NewImageFromImage(img), nil
}
