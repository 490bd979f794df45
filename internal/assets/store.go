// Package assets reads the composition assets: the poster background, the
// decorative frame and the optional text faces.
package assets

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/youruser/posterapp/internal/config"
)

// ErrAssetMissing indicates a required composition asset could not be read.
// A poster cannot be produced without its background or frame.
var ErrAssetMissing = errors.New("asset missing")

// Store reads composition assets from a directory.
type Store struct {
	cfg config.AssetsConfig
	log *slog.Logger
}

// NewStore creates a Store over the configured asset directory.
func NewStore(cfg config.AssetsConfig, log *slog.Logger) *Store {
	return &Store{cfg: cfg, log: log}
}

// Background returns the poster background. Its native dimensions drive the
// final output size.
func (s *Store) Background() (image.Image, error) {
	return s.open(s.cfg.Background)
}

// Frame returns the decorative overlay raster.
func (s *Store) Frame() (image.Image, error) {
	return s.open(s.cfg.Frame)
}

func (s *Store) open(name string) (image.Image, error) {
	path := filepath.Join(s.cfg.Dir, name)
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, ErrAssetMissing, err)
	}
	return img, nil
}

// NameFont returns the raw bytes of the display face for the name field.
// Absence is not fatal; callers substitute a bundled face.
func (s *Store) NameFont() ([]byte, error) {
	return s.font(s.cfg.NameFont)
}

// DesignationFont returns the raw bytes of the designation face.
func (s *Store) DesignationFont() ([]byte, error) {
	return s.font(s.cfg.DesignationFont)
}

func (s *Store) font(name string) ([]byte, error) {
	if name == "" {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(filepath.Join(s.cfg.Dir, name))
}

// Preflight verifies the required assets decode, so a misconfigured install
// fails at startup rather than on the first poster request.
func (s *Store) Preflight() error {
	if _, err := s.Background(); err != nil {
		return err
	}
	if _, err := s.Frame(); err != nil {
		return err
	}
	for _, name := range []string{s.cfg.NameFont, s.cfg.DesignationFont} {
		if name == "" {
			continue
		}
		if _, err := s.font(name); err != nil {
			s.log.Warn("font asset not readable, bundled face will be used", "font", name)
		}
	}
	return nil
}
