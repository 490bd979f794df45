package poster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Compositor flattens the poster layer stack. The z-order is fixed and
// load-bearing: background at the bottom, then the character, then the frame
// (which may occlude part of the character through its window), and text on
// top where nothing can cover it.
type Compositor struct {
	// Window is the character window height as a fraction of the frame height.
	Window float64
	// TopOffset is the pixel offset from the frame's top edge at which the
	// character raster is placed.
	TopOffset int
}

// Compose stacks character, frame and text over the background and returns a
// single opaque raster at the background's native dimensions. textLayer may
// be nil when no text was requested. Inputs are not mutated; every transform
// yields a new raster.
func (c *Compositor) Compose(background, frame, character, textLayer image.Image) (*image.NRGBA, error) {
	if err := checkLayer("background", background); err != nil {
		return nil, err
	}
	if err := checkLayer("frame", frame); err != nil {
		return nil, err
	}
	if err := checkLayer("character", character); err != nil {
		return nil, err
	}

	bounds := background.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// The frame is stretched to the output size exactly; the character is
	// cover-fit into the frame's window, anchored at the top so the subject's
	// face region survives the crop.
	frameLayer := imaging.Resize(frame, width, height, imaging.Lanczos)
	windowHeight := int(math.Floor(float64(height) * c.Window))
	if windowHeight <= 0 {
		return nil, fmt.Errorf("compose poster: character window height is zero")
	}
	characterLayer := imaging.Fill(character, width, windowHeight, imaging.Top, imaging.Lanczos)

	// Composite-behind: the character goes down first, the frame over it, so
	// the character shows only through the frame's transparent regions.
	overlay := imaging.New(width, height, color.NRGBA{})
	overlay = imaging.Paste(overlay, characterLayer, image.Pt(0, c.TopOffset))
	overlay = imaging.Overlay(overlay, frameLayer, image.Pt(0, 0), 1.0)
	overlay = imaging.Fill(overlay, width, height, imaging.Center, imaging.Lanczos)

	out := imaging.New(width, height, color.NRGBA{A: 0xff})
	out = imaging.Overlay(out, background, image.Pt(0, 0), 1.0)
	out = imaging.Overlay(out, overlay, image.Pt(0, 0), 1.0)
	if textLayer != nil {
		out = imaging.Overlay(out, textLayer, image.Pt(0, 0), 1.0)
	}
	return out, nil
}

func checkLayer(name string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("compose poster: %s layer is nil", name)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("compose poster: %s layer is empty", name)
	}
	return nil
}
