package poster

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FaceID selects one of the two poster text faces.
type FaceID int

const (
	// FaceName is the semi-bold display face used for the name field.
	FaceName FaceID = iota
	// FaceDesignation is the regular face used for the designation field.
	FaceDesignation
)

// FontSource supplies raw font bytes. Implemented by the asset store; a source
// error is recovered by substituting the bundled Go faces.
type FontSource interface {
	NameFont() ([]byte, error)
	DesignationFont() ([]byte, error)
}

type faceKey struct {
	id   FaceID
	size float64
}

// Library parses the poster fonts once per process and hands out measured
// faces at arbitrary sizes. Registration is guarded so concurrent first
// callers neither parse twice nor race on the parsed fonts.
type Library struct {
	source FontSource
	log    *slog.Logger

	once        sync.Once
	name        *truetype.Font
	designation *truetype.Font
	nameRaw     []byte
	desigRaw    []byte
	initErr     error

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewLibrary creates a Library over the given font source.
func NewLibrary(source FontSource, log *slog.Logger) *Library {
	return &Library{source: source, log: log, faces: map[faceKey]font.Face{}}
}

// register performs the one-time font parse. Missing or unparsable asset
// fonts fall back to the bundled Go faces and are never fatal.
func (l *Library) register() error {
	l.once.Do(func() {
		l.nameRaw, l.name = l.load("name", l.source.NameFont, gobold.TTF)
		l.desigRaw, l.designation = l.load("designation", l.source.DesignationFont, goregular.TTF)
		if l.name == nil || l.designation == nil {
			l.initErr = fmt.Errorf("register poster fonts: no usable face")
		}
	})
	return l.initErr
}

func (l *Library) load(field string, read func() ([]byte, error), fallback []byte) ([]byte, *truetype.Font) {
	data, err := read()
	if err != nil {
		l.log.Warn("font asset unavailable, using bundled face", "field", field, "error", err)
	} else {
		f, perr := truetype.Parse(data)
		if perr == nil {
			return data, f
		}
		l.log.Warn("font asset unparsable, using bundled face", "field", field, "error", perr)
	}
	f, err := truetype.Parse(fallback)
	if err != nil {
		return nil, nil
	}
	return fallback, f
}

// Face returns a rendering face for the given field at the given size. Faces
// are cached per (field, size) pair.
func (l *Library) Face(id FaceID, size float64) (font.Face, error) {
	if err := l.register(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	key := faceKey{id: id, size: size}
	if f, ok := l.faces[key]; ok {
		return f, nil
	}
	f := truetype.NewFace(l.font(id), &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	l.faces[key] = f
	return f, nil
}

// Bytes returns the raw TTF backing the given field, for renderers that load
// fonts themselves.
func (l *Library) Bytes(id FaceID) ([]byte, error) {
	if err := l.register(); err != nil {
		return nil, err
	}
	if id == FaceName {
		return l.nameRaw, nil
	}
	return l.desigRaw, nil
}

// CapHeight returns the ink height of a capital letter at the given face and
// size, in pixels. Both text backends derive their baselines from this shared
// metric so a backend failover does not move the text.
func (l *Library) CapHeight(id FaceID, size float64) (float64, error) {
	f, err := l.Face(id, size)
	if err != nil {
		return 0, err
	}
	b, _ := font.BoundString(f, "H")
	if h := float64(-b.Min.Y) / 64; h > 0 {
		return h, nil
	}
	// degenerate face with no ink bounds for "H"
	return size * 0.7, nil
}

// Measure returns the exact advance width of s in pixels at the given face
// and size.
func (l *Library) Measure(id FaceID, size float64, s string) (float64, error) {
	f, err := l.Face(id, size)
	if err != nil {
		return 0, err
	}
	return float64(font.MeasureString(f, s)) / 64, nil
}

func (l *Library) font(id FaceID) *truetype.Font {
	if id == FaceName {
		return l.name
	}
	return l.designation
}
