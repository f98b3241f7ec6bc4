package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithFile_NoPath(t *testing.T) {
	cfg, err := LoadWithFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.URL != os.Getenv("DATABASE_URL") {
		t.Errorf("expected env-sourced default when no file given")
	}
}

func TestLoadWithFile_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("expected missing file to be tolerated, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected a config even with a missing file")
	}
}

func TestLoadWithFile_OverridesDatabaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facegroup.yaml")
	content := "database:\n  url: postgres://file-configured/facegroup\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.URL != "postgres://file-configured/facegroup" {
		t.Errorf("expected file override applied, got %q", cfg.Database.URL)
	}
}

func TestLoadWithFile_RecognitionOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facegroup.yaml")
	content := "recognition:\n  baseUrl: http://engine.internal\n  collectionPrefix: people_\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Recognition.BaseURL != "http://engine.internal" {
		t.Errorf("expected base URL override, got %q", cfg.Recognition.BaseURL)
	}
	if cfg.Recognition.CollectionPrefix != "people_" {
		t.Errorf("expected collection prefix override, got %q", cfg.Recognition.CollectionPrefix)
	}
}
