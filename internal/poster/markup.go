package poster

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
)

// ptPerMM converts canvas units (mm, mapped 1:1 to pixels at DPMM(1)) to the
// point sizes the font machinery expects.
const ptPerMM = 72.0 / 25.4

// MarkupBackend renders text through a vector canvas and rasterizes the
// result. It is the fallback path for environments where the raster text
// backend cannot initialize, and must match RasterBackend's geometry: same
// horizontal centering, same cap-centered baseline, same tracking.
type MarkupBackend struct {
	Fonts *Library

	mu       sync.Mutex
	families map[FaceID]*canvas.FontFamily
}

// Render rasterizes the specs onto a transparent canvas of the given size.
func (b *MarkupBackend) Render(width, height int, specs []TextSpec) (image.Image, error) {
	c := canvas.New(float64(width), float64(height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	for _, s := range specs {
		if s.Content == "" {
			continue
		}
		family, err := b.family(s.Face)
		if err != nil {
			return nil, fmt.Errorf("markup text backend: %w", err)
		}
		face := family.Face(s.FontSize*ptPerMM, s.Color, canvas.FontRegular, canvas.FontNormal)
		// Same cap-height baseline rule as the raster backend, from the same
		// measured metric, so a failover never moves the text.
		capHeight, err := b.Fonts.CapHeight(s.Face, s.FontSize)
		if err != nil {
			return nil, fmt.Errorf("markup text backend: %w", err)
		}
		baseline := math.Floor(float64(height)*s.Position) + capHeight/2
		cx := float64(width) / 2

		if s.LetterSpacing == 0 {
			ctx.DrawText(cx, baseline, canvas.NewTextLine(face, s.Content, canvas.Center))
			continue
		}

		spacing := s.LetterSpacing * s.FontSize
		runes := []rune(s.Content)
		widths := make([]float64, len(runes))
		total := 0.0
		for i, r := range runes {
			widths[i] = face.TextWidth(string(r))
			total += widths[i]
		}
		total += spacing * float64(len(runes)-1)

		x := cx - total/2
		for i, r := range runes {
			ctx.DrawText(x, baseline, canvas.NewTextLine(face, string(r), canvas.Left))
			x += widths[i] + spacing
		}
	}

	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace), nil
}

func (b *MarkupBackend) family(id FaceID) (*canvas.FontFamily, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.families == nil {
		b.families = map[FaceID]*canvas.FontFamily{}
	}
	if f, ok := b.families[id]; ok {
		return f, nil
	}
	data, err := b.Fonts.Bytes(id)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(fmt.Sprintf("poster-%d", id))
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("load font for markup rendering: %w", err)
	}
	b.families[id] = family
	return family, nil
}
