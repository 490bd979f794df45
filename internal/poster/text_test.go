package poster

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

// inkBounds returns the bounding box of pixels with non-zero alpha.
func inkBounds(t *testing.T, img image.Image) (image.Rectangle, bool) {
	t.Helper()
	n := imaging.Clone(img)
	b := n.Bounds()
	found := false
	box := image.Rectangle{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if n.NRGBAAt(x, y).A == 0 {
				continue
			}
			p := image.Rect(x, y, x+1, y+1)
			if !found {
				box = p
				found = true
			} else {
				box = box.Union(p)
			}
		}
	}
	return box, found
}

func nameSpec(content string) TextSpec {
	return TextSpec{
		Content:  content,
		FontSize: 48,
		Position: 0.752,
		Color:    color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Face:     FaceName,
	}
}

func TestRasterBackendDrawsCenteredText(t *testing.T) {
	b := &RasterBackend{Fonts: NewLibrary(unavailableFonts{}, discardLogger())}
	img, err := b.Render(800, 1000, []TextSpec{nameSpec("HERO")})
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds(); got.Dx() != 800 || got.Dy() != 1000 {
		t.Fatalf("canvas bounds %v", got)
	}

	box, ok := inkBounds(t, img)
	if !ok {
		t.Fatal("no glyphs rendered")
	}
	cx := (box.Min.X + box.Max.X) / 2
	if cx < 360 || cx > 440 {
		t.Fatalf("ink center x = %d, want near 400", cx)
	}
	// cap glyphs center on the target line, not on the face's line box
	cy := (box.Min.Y + box.Max.Y) / 2
	if cy < 746 || cy > 758 {
		t.Fatalf("ink center y = %d, want near 752", cy)
	}
}

func TestRasterBackendSkipsEmptySpecs(t *testing.T) {
	b := &RasterBackend{Fonts: NewLibrary(unavailableFonts{}, discardLogger())}
	img, err := b.Render(200, 200, []TextSpec{nameSpec("")})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := inkBounds(t, img); ok {
		t.Fatal("empty spec produced ink")
	}
}

func TestRasterBackendNegativeTrackingTightens(t *testing.T) {
	b := &RasterBackend{Fonts: NewLibrary(unavailableFonts{}, discardLogger())}

	spec := TextSpec{
		Content:  "SOFTWARE ENGINEER",
		FontSize: 42,
		Position: 0.5,
		Color:    color.NRGBA{A: 0xff},
		Face:     FaceDesignation,
	}
	plain, err := b.Render(1200, 200, []TextSpec{spec})
	if err != nil {
		t.Fatal(err)
	}
	spec.LetterSpacing = -0.04
	tracked, err := b.Render(1200, 200, []TextSpec{spec})
	if err != nil {
		t.Fatal(err)
	}

	plainBox, ok := inkBounds(t, plain)
	if !ok {
		t.Fatal("plain render empty")
	}
	trackedBox, ok := inkBounds(t, tracked)
	if !ok {
		t.Fatal("tracked render empty")
	}
	if trackedBox.Dx() >= plainBox.Dx() {
		t.Fatalf("negative tracking did not tighten: plain=%d tracked=%d", plainBox.Dx(), trackedBox.Dx())
	}
}

type failingRenderer struct{ err error }

func (f failingRenderer) Render(int, int, []TextSpec) (image.Image, error) {
	return nil, f.err
}

type panickingRenderer struct{}

func (panickingRenderer) Render(int, int, []TextSpec) (image.Image, error) {
	panic("backend cannot initialize")
}

type recordingRenderer struct {
	called bool
	img    image.Image
}

func (r *recordingRenderer) Render(w, h int, _ []TextSpec) (image.Image, error) {
	r.called = true
	if r.img == nil {
		r.img = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	return r.img, nil
}

func TestFallbackRendererRecoversFromError(t *testing.T) {
	fb := &recordingRenderer{}
	r := &FallbackRenderer{
		Primary:  failingRenderer{err: errors.New("no backend")},
		Fallback: fb,
		Log:      discardLogger(),
	}
	img, err := r.Render(100, 100, []TextSpec{nameSpec("X")})
	if err != nil {
		t.Fatal(err)
	}
	if !fb.called {
		t.Fatal("fallback was not used")
	}
	if img != fb.img {
		t.Fatal("fallback output not returned")
	}
}

func TestFallbackRendererRecoversFromPanic(t *testing.T) {
	fb := &recordingRenderer{}
	r := &FallbackRenderer{Primary: panickingRenderer{}, Fallback: fb, Log: discardLogger()}
	if _, err := r.Render(100, 100, nil); err != nil {
		t.Fatal(err)
	}
	if !fb.called {
		t.Fatal("fallback was not used after panic")
	}
}

func TestFallbackRendererPrefersPrimary(t *testing.T) {
	primary := &recordingRenderer{}
	fb := &recordingRenderer{}
	r := &FallbackRenderer{Primary: primary, Fallback: fb, Log: discardLogger()}
	if _, err := r.Render(100, 100, nil); err != nil {
		t.Fatal(err)
	}
	if !primary.called || fb.called {
		t.Fatalf("primary=%v fallback=%v", primary.called, fb.called)
	}
}

// Rendering the same spec through both backends must put the ink in the same
// place; a failover mid-deployment must not shift the text.
func TestBackendsAgreeOnTextPlacement(t *testing.T) {
	lib := NewLibrary(unavailableFonts{}, discardLogger())
	raster := &RasterBackend{Fonts: lib}
	markup := &MarkupBackend{Fonts: lib}

	specs := []TextSpec{
		{
			Content:  "HERO",
			FontSize: 80,
			Position: 0.5,
			Color:    color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
			Face:     FaceName,
		},
		{
			Content:       "SOFTWARE ENGINEER",
			FontSize:      42,
			Position:      0.784,
			Color:         color.NRGBA{R: 0xe8, G: 0xd9, B: 0xa0, A: 0xff},
			LetterSpacing: -0.04,
			Face:          FaceDesignation,
		},
	}
	for _, spec := range specs {
		rImg, err := raster.Render(800, 1000, []TextSpec{spec})
		if err != nil {
			t.Fatal(err)
		}
		mImg, err := markup.Render(800, 1000, []TextSpec{spec})
		if err != nil {
			t.Fatal(err)
		}
		rBox, ok := inkBounds(t, rImg)
		if !ok {
			t.Fatalf("%q: raster backend rendered no glyphs", spec.Content)
		}
		mBox, ok := inkBounds(t, mImg)
		if !ok {
			t.Fatalf("%q: markup backend rendered no glyphs", spec.Content)
		}

		dx := (rBox.Min.X + rBox.Max.X - mBox.Min.X - mBox.Max.X) / 2
		dy := (rBox.Min.Y + rBox.Max.Y - mBox.Min.Y - mBox.Max.Y) / 2
		if dx < -6 || dx > 6 || dy < -6 || dy > 6 {
			t.Fatalf("%q: ink centers diverge by (%d, %d): raster %v, markup %v",
				spec.Content, dx, dy, rBox, mBox)
		}
	}
}

func TestMarkupBackendMatchesCanvasSize(t *testing.T) {
	b := &MarkupBackend{Fonts: NewLibrary(unavailableFonts{}, discardLogger())}
	img, err := b.Render(640, 480, []TextSpec{nameSpec("HERO")})
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds(); got.Dx() != 640 || got.Dy() != 480 {
		t.Fatalf("canvas bounds %v", got)
	}
	if _, ok := inkBounds(t, img); !ok {
		t.Fatal("markup backend rendered no glyphs")
	}
}
