package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"imglabel/internal/errors"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Collision strategies applied when the destination already holds a file
// with the same name.
const (
	CollisionOverwrite = "overwrite"
	CollisionRename    = "rename"
	CollisionFail      = "fail"
)

// Settings controls how files are moved.
type Settings struct {
	DryRun    bool   `yaml:"dry_run"`   // If true, log moves without touching the disk
	Collision string `yaml:"collision"` // overwrite, rename or fail
}

// Filter narrows what becomes a label or a queued image.
type Filter struct {
	Include    []string `yaml:"include"`     // Glob patterns a queued file must match (empty = all files)
	SkipHidden bool     `yaml:"skip_hidden"` // Ignore dot-files and dot-directories
}

// Display describes the image box shared by both front-ends.
type Display struct {
	MaxWidth  int    `yaml:"max_width"`
	MaxHeight int    `yaml:"max_height"`
	Theme     string `yaml:"theme"`
}

// Journal configures the move history database.
type Journal struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Defaults to ~/.local/share/imglabel/journal.db
}

// Config represents the application configuration structure.
type Config struct {
	Settings Settings `yaml:"settings"`
	Filter   Filter   `yaml:"filter"`
	Display  Display  `yaml:"display"`
	Journal  Journal  `yaml:"journal"`
	Watch    struct {
		Enabled bool `yaml:"enabled"` // Report external changes to the labeled directory
	} `yaml:"watch"`
	Lock struct {
		Enabled bool `yaml:"enabled"` // Refuse to label a directory another labeler holds
	} `yaml:"lock"`
	Theme struct {
		Name     string `yaml:"name"`
		Primary  string `yaml:"primary"`
		Success  string `yaml:"success"`
		Warning  string `yaml:"warning"`
		Error    string `yaml:"error"`
		Info     string `yaml:"info"`
		Emphasis string `yaml:"emphasis"`
		Border   string `yaml:"border"`
	} `yaml:"-"`
}

// DefaultPath returns ~/.config/imglabel/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "imglabel", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewConfigError("error reading config file", path, errors.ConfigNotFound, err)
	}

	// Decoding over the defaults keeps every key the file leaves out.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.ApplyTheme(cfg.Display.Theme)

	return cfg, nil
}

// defaultConfig returns the default configuration. A plain rename into the
// label directory with no filtering is the baseline behaviour.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Settings.DryRun = false
	cfg.Settings.Collision = CollisionOverwrite

	cfg.Filter.Include = []string{}
	cfg.Filter.SkipHidden = false

	cfg.Display.MaxWidth = 500
	cfg.Display.MaxHeight = 500
	cfg.Display.Theme = "default"

	cfg.Journal.Enabled = true
	cfg.Journal.Path = ""

	cfg.Watch.Enabled = true
	cfg.Lock.Enabled = true

	cfg.ApplyTheme(cfg.Display.Theme)
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create config directory %s", dir)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write config file %s", path)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	switch c.Settings.Collision {
	case CollisionOverwrite, CollisionRename, CollisionFail:
	default:
		return errors.NewConfigError("invalid collision setting "+c.Settings.Collision,
			"settings.collision", errors.InvalidConfig, nil)
	}

	if c.Display.MaxWidth < 1 {
		return errors.NewConfigError("max width must be >= 1", "display.max_width", errors.InvalidConfig, nil)
	}
	if c.Display.MaxHeight < 1 {
		return errors.NewConfigError("max height must be >= 1", "display.max_height", errors.InvalidConfig, nil)
	}
	if c.Display.Theme != "" && !slices.Contains(ListThemes(), c.Display.Theme) {
		return errors.NewConfigError("unknown theme "+c.Display.Theme, "display.theme", errors.InvalidConfig, nil)
	}

	for i, pattern := range c.Filter.Include {
		if pattern == "" {
			return errors.NewConfigError(fmt.Sprintf("include pattern %d is empty", i),
				"filter.include", errors.InvalidConfig, nil)
		}
		if _, err := glob.Compile(pattern); err != nil {
			return errors.NewConfigError(fmt.Sprintf("include pattern %q", pattern),
				"filter.include", errors.InvalidConfig, err)
		}
	}

	return nil
}

// JournalPath returns the configured journal path or the default under the
// user's data directory.
func (c *Config) JournalPath() (string, error) {
	if c.Journal.Path != "" {
		return c.Journal.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "imglabel", "journal.db"), nil
}

// NewTestConfig creates a configuration instance for testing purposes:
// no journal, no watcher, no lock.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Journal.Enabled = false
	cfg.Watch.Enabled = false
	cfg.Lock.Enabled = false
	return cfg
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	themes := map[string]map[string]string{
		"default": {
			"primary":  "213", // Purple
			"success":  "114", // Green
			"warning":  "220", // Yellow
			"error":    "196", // Red
			"info":     "39",  // Blue
			"emphasis": "212", // Light Pink
			"border":   "213", // Purple
		},
		"dark": {
			"primary":  "105",
			"success":  "78",
			"warning":  "214",
			"error":    "160",
			"info":     "33",
			"emphasis": "147",
			"border":   "105",
		},
		"light": {
			"primary":  "135",
			"success":  "150",
			"warning":  "222",
			"error":    "210",
			"info":     "117",
			"emphasis": "219",
			"border":   "135",
		},
		"monochrome": {
			"primary":  "245",
			"success":  "252",
			"warning":  "241",
			"error":    "232",
			"info":     "248",
			"emphasis": "255",
			"border":   "245",
		},
	}

	if theme, exists := themes[name]; exists {
		return theme
	}

	return themes["default"]
}

// ApplyTheme sets the theme colours in the configuration.
func (c *Config) ApplyTheme(name string) {
	theme := GetTheme(name)

	c.Theme.Name = name
	c.Theme.Primary = theme["primary"]
	c.Theme.Success = theme["success"]
	c.Theme.Warning = theme["warning"]
	c.Theme.Error = theme["error"]
	c.Theme.Info = theme["info"]
	c.Theme.Emphasis = theme["emphasis"]
	c.Theme.Border = theme["border"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome"}
}
