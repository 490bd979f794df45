package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.NamePosition != 0.752 || cfg.Layout.DesignationPosition != 0.784 {
		t.Fatalf("unexpected default positions: %+v", cfg.Layout)
	}
	if !cfg.Layout.TitlecaseDesignation {
		t.Fatal("designation titlecasing should default on")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = "9000"

[layout]
name_position = 0.742
designation_position = 0.774
titlecase_designation = false

[genapi]
endpoint = "https://example.test/generate"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "9000" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	// the other lineage's layout constants are reachable by config alone
	if cfg.Layout.NamePosition != 0.742 || cfg.Layout.DesignationPosition != 0.774 {
		t.Fatalf("layout positions not overridden: %+v", cfg.Layout)
	}
	if cfg.Layout.TitlecaseDesignation {
		t.Fatal("titlecase_designation not overridden")
	}
	// untouched keys keep defaults
	if cfg.Layout.NameBaseSize != 80 {
		t.Fatalf("name_base_size = %v", cfg.Layout.NameBaseSize)
	}
	if cfg.GenAPI.Endpoint != "https://example.test/generate" {
		t.Fatalf("endpoint = %q", cfg.GenAPI.Endpoint)
	}
}

func TestLoadRejectsBadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[layout]\nname_position = 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for name_position > 1")
	}
}

func TestGenAPIKeyFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[genapi]\napi_key = \"from-file\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GENAPI_KEY", "from-env")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GenAPI.APIKey != "from-env" {
		t.Fatalf("api_key = %q, want env override", cfg.GenAPI.APIKey)
	}
}
