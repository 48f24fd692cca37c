package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/ytget/quickytdl/internal/platform"
)

// Settings keys of the JSON document
const (
	KeyDefaultSaveDir = "default_save_dir"
	KeyAutoShutdown   = "auto_shutdown"
	KeyMaxParallel    = "max_parallel_downloads"
)

// Default values
const (
	DefaultAutoShutdown = false
	DefaultMaxParallel  = 4
	MinParallel         = 1
	MaxParallel         = 10
)

// File constants
const (
	ConfigFileName = "config.json"
	ConfigType     = "json"
	ConfigDirPerm  = 0755
)

// Settings is the persisted user configuration
type Settings struct {
	DefaultSaveDir       string `mapstructure:"default_save_dir"`
	AutoShutdown         bool   `mapstructure:"auto_shutdown"`
	MaxParallelDownloads int    `mapstructure:"max_parallel_downloads"`
}

// Defaults returns the settings used when no file exists
func Defaults() Settings {
	return Settings{
		DefaultSaveDir:       platform.GetDefaultSaveDir(),
		AutoShutdown:         DefaultAutoShutdown,
		MaxParallelDownloads: DefaultMaxParallel,
	}
}

// normalize fills empty values and clamps the parallel limit
func (s Settings) normalize() Settings {
	if s.DefaultSaveDir == "" {
		s.DefaultSaveDir = platform.GetDefaultSaveDir()
	}
	s.MaxParallelDownloads = ClampParallel(s.MaxParallelDownloads)
	return s
}

// ClampParallel limits n to MinParallel..MaxParallel; zero means the default
func ClampParallel(n int) int {
	if n == 0 {
		return DefaultMaxParallel
	}
	if n < MinParallel {
		return MinParallel
	}
	if n > MaxParallel {
		return MaxParallel
	}
	return n
}

// Store manages application configuration in a JSON file
type Store struct {
	mu      sync.RWMutex
	v       *viper.Viper
	path    string
	current Settings
	log     logrus.FieldLogger
}

// DefaultPath returns <user config dir>/QuickYTDL/config.json
func DefaultPath() string {
	dir, err := platform.GetConfigDir()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(dir, ConfigFileName)
}

// NewStore creates a settings store backed by path. Nothing is read until Load.
func NewStore(path string, log logrus.FieldLogger) *Store {
	if path == "" {
		path = DefaultPath()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ConfigType)
	setDefaults(v)

	return &Store{
		v:       v,
		path:    path,
		current: Defaults(),
		log:     log,
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyDefaultSaveDir, d.DefaultSaveDir)
	v.SetDefault(KeyAutoShutdown, d.AutoShutdown)
	v.SetDefault(KeyMaxParallel, d.MaxParallelDownloads)
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the file. A missing file yields defaults; a malformed one is
// logged and left untouched, and defaults are used.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = s.readLocked()
	return s.current
}

func (s *Store) readLocked() Settings {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		s.log.WithField("path", s.path).Debug("settings file not found, using defaults")
		return Defaults()
	}

	if err := s.v.ReadInConfig(); err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("failed to read settings, using defaults")
		return Defaults()
	}

	var loaded Settings
	if err := s.v.Unmarshal(&loaded); err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("failed to decode settings, using defaults")
		return Defaults()
	}
	return loaded.normalize()
}

// Save writes settings as indented JSON, creating the parent directory
func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(settings.normalize())
}

func (s *Store) saveLocked(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// s.v only reads; Set on it would shadow the file on every later read
	w := viper.New()
	w.SetConfigType(ConfigType)
	w.Set(KeyDefaultSaveDir, settings.DefaultSaveDir)
	w.Set(KeyAutoShutdown, settings.AutoShutdown)
	w.Set(KeyMaxParallel, settings.MaxParallelDownloads)

	if err := w.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	s.current = settings
	return nil
}

// Get returns the last loaded or saved settings
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetDefaultSaveDir updates and persists the default save directory
func (s *Store) SetDefaultSaveDir(dir string) error {
	return s.update(func(st *Settings) { st.DefaultSaveDir = dir })
}

// SetAutoShutdown updates and persists the auto-shutdown flag
func (s *Store) SetAutoShutdown(enabled bool) error {
	return s.update(func(st *Settings) { st.AutoShutdown = enabled })
}

// SetMaxParallelDownloads updates and persists the parallel download limit
func (s *Store) SetMaxParallelDownloads(count int) error {
	if count < MinParallel {
		count = MinParallel
	}
	return s.update(func(st *Settings) { st.MaxParallelDownloads = count })
}

func (s *Store) update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	fn(&next)
	return s.saveLocked(next.normalize())
}

// Watch reloads settings when the file changes on disk and passes them to fn
func (s *Store) Watch(fn func(Settings)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	s.v.OnConfigChange(func(e fsnotify.Event) {
		s.mu.Lock()
		s.current = s.readLocked()
		current := s.current
		s.mu.Unlock()

		s.log.WithField("op", e.Op.String()).Info("settings reloaded")
		if fn != nil {
			fn(current)
		}
	})
	s.v.WatchConfig()
	return nil
}
