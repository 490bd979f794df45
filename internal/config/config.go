// Package config loads the poster service configuration from a TOML file.
//
// Every tunable of the composition layout (vertical text positions, glyph-width
// factors, size floors, the character window) lives here rather than in the
// rendering code, because the two lineages of the poster layout disagree on the
// exact constants and operators need to switch between them without a rebuild.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level service configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Assets  AssetsConfig  `toml:"assets"`
	Layout  LayoutConfig  `toml:"layout"`
	Storage StorageConfig `toml:"storage"`
	GenAPI  GenAPIConfig  `toml:"genapi"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port the HTTP server listens on. The PORT environment variable, when
	// set, takes precedence.
	Port string `toml:"port"`
}

// AssetsConfig locates the composition assets.
type AssetsConfig struct {
	// Dir is the directory holding background, frame and font assets.
	Dir string `toml:"dir"`
	// Background is the poster background file name. Its native dimensions
	// drive the output size.
	Background string `toml:"background"`
	// Frame is the decorative overlay file name.
	Frame string `toml:"frame"`
	// NameFont is the display face used for the name field. Optional; the
	// bundled bold face is substituted when absent.
	NameFont string `toml:"name_font"`
	// DesignationFont is the face used for the designation field. Optional.
	DesignationFont string `toml:"designation_font"`
}

// LayoutConfig holds the composition layout constants.
type LayoutConfig struct {
	// NamePosition and DesignationPosition are vertical positions of the two
	// text fields as fractions of the output height.
	NamePosition        float64 `toml:"name_position"`
	DesignationPosition float64 `toml:"designation_position"`

	// NameBaseSize and DesignationBaseSize are the starting font sizes in
	// pixels before auto-fit scaling.
	NameBaseSize        float64 `toml:"name_base_size"`
	DesignationBaseSize float64 `toml:"designation_base_size"`

	// NameGlyphFactor and DesignationGlyphFactor are average glyph width
	// factors used by the width-estimate heuristic. The name field renders in
	// a wide all-caps face, so its factor is larger.
	NameGlyphFactor        float64 `toml:"name_glyph_factor"`
	DesignationGlyphFactor float64 `toml:"designation_glyph_factor"`

	// NameMinSize and DesignationMinSize are legibility floors: auto-fit
	// never shrinks below these even if the text then overflows its bound.
	NameMinSize        float64 `toml:"name_min_size"`
	DesignationMinSize float64 `toml:"designation_min_size"`

	// MaxTextWidth is the text width budget as a fraction of output width.
	MaxTextWidth float64 `toml:"max_text_width"`

	// DesignationLetterSpacing is extra tracking for the designation field,
	// as a signed fraction of its font size.
	DesignationLetterSpacing float64 `toml:"designation_letter_spacing"`

	// NameColor and DesignationColor are hex colors ("#rrggbb" or "#rrggbbaa").
	NameColor        string `toml:"name_color"`
	DesignationColor string `toml:"designation_color"`

	// CharacterWindow is the height of the character window as a fraction of
	// the frame height. The character is cover-fit into
	// (frame width, frame height * CharacterWindow).
	CharacterWindow float64 `toml:"character_window"`

	// CharacterTopOffset is the pixel offset from the top of the frame at
	// which the character raster is placed.
	CharacterTopOffset int `toml:"character_top_offset"`

	// TitlecaseDesignation controls whether the designation is normalized to
	// title case. The name field is always uppercased.
	TitlecaseDesignation bool `toml:"titlecase_designation"`
}

// StorageConfig holds poster persistence settings.
type StorageConfig struct {
	// Dir is the directory generated posters are written to.
	Dir string `toml:"dir"`
	// BaseURL is the public URL prefix under which stored posters are served.
	BaseURL string `toml:"base_url"`
	// Index is the path of the gallery index file.
	Index string `toml:"index"`
}

// GenAPIConfig holds settings for the external image-generation API.
type GenAPIConfig struct {
	// Endpoint is the generation API URL. Empty disables the client; poster
	// requests must then carry a pre-generated character image.
	Endpoint string `toml:"endpoint"`
	// APIKey is sent as a bearer token. The GENAPI_KEY environment variable,
	// when set, takes precedence.
	APIKey string `toml:"api_key"`
	// Model is the generation model identifier.
	Model string `toml:"model"`
	// TimeoutSeconds bounds a single generation request.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// RetryMax is the number of retries for failed generation calls.
	RetryMax int `toml:"retry_max"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `toml:"level"`
	// File is an optional log file path; rotation applies when set.
	File string `toml:"file"`
	// MaxSizeMB is the log file size limit before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// Default returns the built-in configuration. Load decodes the TOML file over
// these values, so absent keys keep their defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Assets: AssetsConfig{
			Dir:             "assets",
			Background:      "background.png",
			Frame:           "frame.png",
			NameFont:        "display-semibold.ttf",
			DesignationFont: "body-regular.ttf",
		},
		Layout: LayoutConfig{
			NamePosition:             0.752,
			DesignationPosition:      0.784,
			NameBaseSize:             80,
			DesignationBaseSize:      42,
			NameGlyphFactor:          0.6,
			DesignationGlyphFactor:   0.52,
			NameMinSize:              40,
			DesignationMinSize:       24,
			MaxTextWidth:             0.84,
			DesignationLetterSpacing: -0.04,
			NameColor:                "#ffffff",
			DesignationColor:         "#e8d9a0",
			CharacterWindow:          0.60,
			CharacterTopOffset:       120,
			TitlecaseDesignation:     true,
		},
		Storage: StorageConfig{
			Dir:     "posters",
			BaseURL: "http://localhost:8080/api/posters",
			Index:   "posters/index.json",
		},
		GenAPI: GenAPIConfig{
			Model:          "image-alpha-001",
			TimeoutSeconds: 60,
			RetryMax:       2,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// Load reads the config file at path. A missing file is not an error: the
// defaults are returned so the service can start with zero configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if key := os.Getenv("GENAPI_KEY"); key != "" {
		cfg.GenAPI.APIKey = key
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	l := c.Layout
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"layout.name_position", l.NamePosition},
		{"layout.designation_position", l.DesignationPosition},
		{"layout.character_window", l.CharacterWindow},
		{"layout.max_text_width", l.MaxTextWidth},
	} {
		if f.value <= 0 || f.value > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %v", f.name, f.value)
		}
	}
	if l.NameBaseSize <= 0 || l.DesignationBaseSize <= 0 {
		return fmt.Errorf("layout base font sizes must be positive")
	}
	if l.NameMinSize > l.NameBaseSize || l.DesignationMinSize > l.DesignationBaseSize {
		return fmt.Errorf("layout font size floors must not exceed base sizes")
	}
	if l.CharacterTopOffset < 0 {
		return fmt.Errorf("layout.character_top_offset must not be negative")
	}
	return nil
}
