// Package poster implements the poster composition pipeline: auto-fit text
// sizing, text layer rendering with a raster and a markup backend, layer
// compositing and the orchestrating generator.
package poster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/youruser/posterapp/internal/config"
)

// AssetSource supplies the background and frame rasters.
type AssetSource interface {
	Background() (image.Image, error)
	Frame() (image.Image, error)
}

// Generator sequences the poster pipeline: size the text, render the text
// layer, compose the stack, and hand back one flattened raster.
type Generator struct {
	assets AssetSource
	text   TextRenderer
	comp   *Compositor
	layout config.LayoutConfig
	log    *slog.Logger

	nameColor        color.Color
	designationColor color.Color
}

// NewGenerator wires a Generator from its collaborators. Invalid layout
// colors are reported here rather than on the first request.
func NewGenerator(assets AssetSource, text TextRenderer, layout config.LayoutConfig, log *slog.Logger) (*Generator, error) {
	nameColor, err := ParseHexColor(layout.NameColor)
	if err != nil {
		return nil, fmt.Errorf("layout name_color: %w", err)
	}
	designationColor, err := ParseHexColor(layout.DesignationColor)
	if err != nil {
		return nil, fmt.Errorf("layout designation_color: %w", err)
	}
	return &Generator{
		assets: assets,
		text:   text,
		comp: &Compositor{
			Window:    layout.CharacterWindow,
			TopOffset: layout.CharacterTopOffset,
		},
		layout:           layout,
		log:              log,
		nameColor:        nameColor,
		designationColor: designationColor,
	}, nil
}

// NormalizeName uppercases and trims the name field. The poster always shows
// the name in all caps.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NormalizeDesignation trims the designation and, when titlecase is set,
// normalizes it to title case. A fresh caser per call: cases.Caser carries
// transform state and is not safe for concurrent use.
func NormalizeDesignation(designation string, titlecase bool) string {
	designation = strings.TrimSpace(designation)
	if titlecase {
		return cases.Title(language.Und).String(designation)
	}
	return designation
}

// DisplayFields returns the name and designation exactly as the pipeline
// renders them, so callers recording poster metadata stay consistent with the
// image.
func (g *Generator) DisplayFields(name, designation string) (string, string) {
	return NormalizeName(name), NormalizeDesignation(designation, g.layout.TitlecaseDesignation)
}

// MergeImages produces the flattened poster for the given character image and
// optional name/designation. The output dimensions always equal the
// background asset's native dimensions. When both text fields are empty the
// text stage is skipped entirely.
func (g *Generator) MergeImages(ctx context.Context, character image.Image, name, designation string) (image.Image, error) {
	background, frame, err := g.readAssets()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := background.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	name, designation = g.DisplayFields(name, designation)

	var textLayer image.Image
	if name != "" || designation != "" {
		textLayer, err = g.text.Render(width, height, g.buildSpecs(name, designation, width))
		if err != nil {
			return nil, fmt.Errorf("render text layer: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := g.comp.Compose(background, frame, character, textLayer)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MergePNG runs MergeImages and encodes the result as PNG.
func (g *Generator) MergePNG(ctx context.Context, character image.Image, name, designation string) ([]byte, error) {
	img, err := g.MergeImages(ctx, character, name, designation)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode poster: %w", err)
	}
	return buf.Bytes(), nil
}

// readAssets reads the background and frame concurrently; the two reads are
// independent and both must succeed.
func (g *Generator) readAssets() (background, frame image.Image, err error) {
	type result struct {
		img image.Image
		err error
	}
	bgCh := make(chan result, 1)
	frCh := make(chan result, 1)
	go func() {
		img, err := g.assets.Background()
		bgCh <- result{img, err}
	}()
	go func() {
		img, err := g.assets.Frame()
		frCh <- result{img, err}
	}()

	bg, fr := <-bgCh, <-frCh
	if bg.err != nil {
		return nil, nil, fmt.Errorf("read background asset: %w", bg.err)
	}
	if fr.err != nil {
		return nil, nil, fmt.Errorf("read frame asset: %w", fr.err)
	}
	return bg.img, fr.img, nil
}

// buildSpecs turns the normalized fields into text specs, auto-fitting each
// field's font size against the shared width budget.
func (g *Generator) buildSpecs(name, designation string, width int) []TextSpec {
	l := g.layout
	maxWidth := float64(width) * l.MaxTextWidth
	specs := make([]TextSpec, 0, 2)
	if name != "" {
		size := ClampMin(FitFontSize(name, l.NameBaseSize, maxWidth, l.NameGlyphFactor), l.NameMinSize)
		specs = append(specs, TextSpec{
			Content:  name,
			FontSize: size,
			Position: l.NamePosition,
			Color:    g.nameColor,
			Face:     FaceName,
		})
	}
	if designation != "" {
		size := ClampMin(FitFontSize(designation, l.DesignationBaseSize, maxWidth, l.DesignationGlyphFactor), l.DesignationMinSize)
		specs = append(specs, TextSpec{
			Content:       designation,
			FontSize:      size,
			Position:      l.DesignationPosition,
			Color:         g.designationColor,
			LetterSpacing: l.DesignationLetterSpacing,
			Face:          FaceDesignation,
		})
	}
	return specs
}
