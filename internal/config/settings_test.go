package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ytget/quickytdl/internal/platform"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "cfg", ConfigFileName), nil)
}

func TestNewStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	store := NewStore(path, nil)

	if store.Path() != path {
		t.Errorf("Expected path %s, got %s", path, store.Path())
	}

	if got := store.Get(); got != Defaults() {
		t.Errorf("Expected defaults before load, got %+v", got)
	}
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	if filepath.Base(path) != ConfigFileName {
		t.Errorf("Expected %s, got %s", ConfigFileName, path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	store := newTestStore(t)

	settings := store.Load()
	if settings.DefaultSaveDir != platform.GetDefaultSaveDir() {
		t.Errorf("Expected default save dir, got %s", settings.DefaultSaveDir)
	}
	if settings.AutoShutdown {
		t.Error("Auto shutdown should default to false")
	}
	if settings.MaxParallelDownloads != DefaultMaxParallel {
		t.Errorf("Expected max parallel %d, got %d", DefaultMaxParallel, settings.MaxParallelDownloads)
	}

	// Load must not create the file
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("Load should not create the settings file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	want := Settings{
		DefaultSaveDir:       "/custom/downloads",
		AutoShutdown:         true,
		MaxParallelDownloads: 6,
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewStore(store.Path(), nil).Load()
	if reloaded != want {
		t.Errorf("Expected %+v, got %+v", want, reloaded)
	}
}

func TestSave_WritesExpectedKeys(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(Settings{DefaultSaveDir: "/x", AutoShutdown: true, MaxParallelDownloads: 2}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("Failed to read settings file: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Settings file is not JSON: %v", err)
	}
	if doc[KeyDefaultSaveDir] != "/x" {
		t.Errorf("Expected %s=/x, got %v", KeyDefaultSaveDir, doc[KeyDefaultSaveDir])
	}
	if doc[KeyAutoShutdown] != true {
		t.Errorf("Expected %s=true, got %v", KeyAutoShutdown, doc[KeyAutoShutdown])
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0755); err != nil {
		t.Fatal(err)
	}
	garbage := []byte("{not json")
	if err := os.WriteFile(store.Path(), garbage, 0644); err != nil {
		t.Fatal(err)
	}

	settings := store.Load()
	if settings != Defaults() {
		t.Errorf("Expected defaults for malformed file, got %+v", settings)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(garbage) {
		t.Error("Malformed file should be left untouched")
	}
}

func TestLoad_PartialFile(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path(), []byte(`{"auto_shutdown": true}`), 0644); err != nil {
		t.Fatal(err)
	}

	settings := store.Load()
	if !settings.AutoShutdown {
		t.Error("Expected auto_shutdown from file")
	}
	if settings.DefaultSaveDir != platform.GetDefaultSaveDir() {
		t.Errorf("Missing key should use default, got %s", settings.DefaultSaveDir)
	}
	if settings.MaxParallelDownloads != DefaultMaxParallel {
		t.Errorf("Missing key should use default, got %d", settings.MaxParallelDownloads)
	}
}

func TestSetters(t *testing.T) {
	store := newTestStore(t)
	store.Load()

	if err := store.SetDefaultSaveDir("/videos"); err != nil {
		t.Fatalf("SetDefaultSaveDir failed: %v", err)
	}
	if err := store.SetAutoShutdown(true); err != nil {
		t.Fatalf("SetAutoShutdown failed: %v", err)
	}
	if err := store.SetMaxParallelDownloads(3); err != nil {
		t.Fatalf("SetMaxParallelDownloads failed: %v", err)
	}

	got := NewStore(store.Path(), nil).Load()
	want := Settings{DefaultSaveDir: "/videos", AutoShutdown: true, MaxParallelDownloads: 3}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestMaxParallelDownloads_Clamped(t *testing.T) {
	store := newTestStore(t)

	store.SetMaxParallelDownloads(0) // Should be clamped to 1
	if store.Get().MaxParallelDownloads != 1 {
		t.Error("Max parallel should be clamped to minimum 1")
	}

	store.SetMaxParallelDownloads(15) // Should be clamped to 10
	if store.Get().MaxParallelDownloads != 10 {
		t.Error("Max parallel should be clamped to maximum 10")
	}
}

func TestClampParallel(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultMaxParallel},
		{-3, MinParallel},
		{1, 1},
		{7, 7},
		{11, MaxParallel},
	}

	for _, test := range tests {
		if got := ClampParallel(test.input); got != test.expected {
			t.Errorf("ClampParallel(%d) = %d, expected %d", test.input, got, test.expected)
		}
	}
}

func writeSettingsFile(t *testing.T, path string, settings map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(settings)
	if err != nil {
		t.Fatalf("Failed to encode settings: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}
}

func TestLoad_AfterSaveReadsExternalEdit(t *testing.T) {
	store := newTestStore(t)
	store.Load()

	if err := store.SetAutoShutdown(true); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := store.SetDefaultSaveDir("/a/b"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	writeSettingsFile(t, store.Path(), map[string]interface{}{
		KeyDefaultSaveDir: "/x/y",
		KeyAutoShutdown:   false,
		KeyMaxParallel:    2,
	})

	got := store.Load()
	want := Settings{DefaultSaveDir: "/x/y", AutoShutdown: false, MaxParallelDownloads: 2}
	if got != want {
		t.Errorf("Expected file values %+v, got %+v", want, got)
	}
	if store.Get() != want {
		t.Errorf("Expected Get to return %+v, got %+v", want, store.Get())
	}
}

func TestWatch_ReloadsExternalEdit(t *testing.T) {
	store := newTestStore(t)
	store.Load()
	if err := store.SetMaxParallelDownloads(6); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	reloaded := make(chan Settings, 16)
	if err := store.Watch(func(s Settings) { reloaded <- s }); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	writeSettingsFile(t, store.Path(), map[string]interface{}{
		KeyDefaultSaveDir: "/watched",
		KeyAutoShutdown:   true,
		KeyMaxParallel:    3,
	})

	want := Settings{DefaultSaveDir: "/watched", AutoShutdown: true, MaxParallelDownloads: 3}
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-reloaded:
			if got == want {
				if store.Get() != want {
					t.Errorf("Expected Get to return %+v, got %+v", want, store.Get())
				}
				return
			}
		case <-timeout:
			t.Fatalf("Watch callback never delivered %+v", want)
		}
	}
}
