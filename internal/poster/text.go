package poster

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/fogleman/gg"
)

// TextSpec describes one text field of the poster layout.
type TextSpec struct {
	// Content is the string to render. Empty content is skipped entirely.
	Content string
	// FontSize is the already auto-fitted size in pixels.
	FontSize float64
	// Position is the vertical position as a fraction of the canvas height.
	// The field is always centered horizontally.
	Position float64
	// Color is the fill color.
	Color color.Color
	// LetterSpacing is extra tracking between glyphs as a signed fraction of
	// FontSize. Zero draws the string in a single pass.
	LetterSpacing float64
	// Face selects the font face.
	Face FaceID
}

// TextRenderer rasterizes text specs onto a transparent canvas. The two
// implementations, RasterBackend and MarkupBackend, must produce geometrically
// equivalent output for the same specs.
type TextRenderer interface {
	Render(width, height int, specs []TextSpec) (image.Image, error)
}

// RasterBackend renders text through a 2D raster drawing context.
type RasterBackend struct {
	Fonts *Library
}

// Render draws each non-empty spec center-anchored at its vertical position.
// The baseline sits half a cap height below the computed Y, so cap glyphs
// visually center on the target line regardless of the face's line metrics.
// Both backends derive the offset from Library.CapHeight.
func (b *RasterBackend) Render(width, height int, specs []TextSpec) (image.Image, error) {
	dc := gg.NewContext(width, height)
	for _, s := range specs {
		if s.Content == "" {
			continue
		}
		face, err := b.Fonts.Face(s.Face, s.FontSize)
		if err != nil {
			return nil, fmt.Errorf("raster text backend: %w", err)
		}
		capHeight, err := b.Fonts.CapHeight(s.Face, s.FontSize)
		if err != nil {
			return nil, fmt.Errorf("raster text backend: %w", err)
		}
		dc.SetFontFace(face)
		dc.SetColor(s.Color)
		baseline := math.Floor(float64(height)*s.Position) + capHeight/2
		cx := float64(width) / 2
		if s.LetterSpacing == 0 {
			dc.DrawStringAnchored(s.Content, cx, baseline, 0.5, 0)
			continue
		}
		if err := b.drawTracked(dc, s, cx, baseline); err != nil {
			return nil, fmt.Errorf("raster text backend: %w", err)
		}
	}
	return dc.Image(), nil
}

// drawTracked draws glyph by glyph, advancing by glyph width plus the
// requested tracking, starting from center minus half the tracked width.
func (b *RasterBackend) drawTracked(dc *gg.Context, s TextSpec, cx, baseline float64) error {
	spacing := s.LetterSpacing * s.FontSize
	runes := []rune(s.Content)
	widths := make([]float64, len(runes))
	total := 0.0
	for i, r := range runes {
		w, err := b.Fonts.Measure(s.Face, s.FontSize, string(r))
		if err != nil {
			return err
		}
		widths[i] = w
		total += w
	}
	total += spacing * float64(len(runes)-1)

	x := cx - total/2
	for i, r := range runes {
		dc.DrawStringAnchored(string(r), x, baseline, 0, 0)
		x += widths[i] + spacing
	}
	return nil
}

// FallbackRenderer tries the primary backend and silently falls back to the
// secondary on any failure. The primary raster backend is known to be
// unavailable in some deployment environments, so the fallback is part of the
// rendering contract: callers never see a primary failure.
type FallbackRenderer struct {
	Primary  TextRenderer
	Fallback TextRenderer
	Log      *slog.Logger
}

// Render renders via the primary backend, switching to the fallback when the
// primary returns an error or panics.
func (f *FallbackRenderer) Render(width, height int, specs []TextSpec) (image.Image, error) {
	img, err := renderSafely(f.Primary, width, height, specs)
	if err == nil {
		return img, nil
	}
	f.Log.Warn("primary text backend failed, falling back", "error", err)
	return f.Fallback.Render(width, height, specs)
}

func renderSafely(r TextRenderer, width, height int, specs []TextSpec) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = nil, fmt.Errorf("text backend panic: %v", p)
		}
	}()
	return r.Render(width, height, specs)
}
