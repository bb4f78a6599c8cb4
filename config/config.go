// Package config provides configuration management for KDE Theme Backup.
// It handles loading, saving, and validating application settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yllada/kde-theme-backup/common"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// BackupDir is the backup root; "~/" is expanded.
	BackupDir string `yaml:"backup_dir"`
	// KDEThemeCommand is the name or path of the kde-theme executable.
	KDEThemeCommand string `yaml:"kde_theme_command"`
	// UninstallScript is the script run through pkexec by "Uninstall".
	UninstallScript string `yaml:"uninstall_script"`
	// StartTimeout bounds how long a command may take to launch.
	StartTimeout time.Duration `yaml:"start_timeout"`
	// ShowNotifications enables desktop notifications when a command finishes.
	ShowNotifications bool `yaml:"show_notifications"`
	// ShowTray enables the system tray indicator.
	ShowTray bool `yaml:"show_tray"`
	// Theme sets the color theme: "light", "dark", or "auto".
	Theme string `yaml:"theme"`

	path string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BackupDir:         common.DefaultBackupDir(),
		KDEThemeCommand:   common.KDEThemeCommand,
		UninstallScript:   common.DefaultUninstallScript(),
		StartTimeout:      common.StartTimeout,
		ShowNotifications: true,
		ShowTray:          true,
		Theme:             common.ThemeAuto,
	}
}

// Load loads the configuration from the default config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from configPath, writing defaults there
// when the file does not exist yet.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.path = configPath
		if err := cfg.Save(); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("error opening configuration: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	// Fields missing from the file keep their defaults.
	config := DefaultConfig()
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("%w: error parsing configuration: %v", common.ErrConfigLoad, err)
	}
	config.path = configPath

	config.validate()
	return config, nil
}

// validate replaces invalid values with their defaults.
func (c *Config) validate() {
	switch c.Theme {
	case common.ThemeAuto, common.ThemeLight, common.ThemeDark:
	default:
		c.Theme = common.ThemeAuto
	}
	if c.StartTimeout <= 0 {
		c.StartTimeout = common.StartTimeout
	}
	if c.BackupDir == "" {
		c.BackupDir = common.DefaultBackupDir()
	}
	if c.KDEThemeCommand == "" {
		c.KDEThemeCommand = common.KDEThemeCommand
	}
	if c.UninstallScript == "" {
		c.UninstallScript = common.DefaultUninstallScript()
	}
}

// BackupRoot returns BackupDir with "~/" expanded.
func (c *Config) BackupRoot() string {
	return common.ExpandHome(c.BackupDir)
}

// Path returns the file this configuration was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.path
}

// Save saves the configuration to the file it was loaded from,
// or to the default location.
func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		var err error
		if configPath, err = DefaultPath(); err != nil {
			return err
		}
	}
	return c.SaveTo(configPath)
}

// SaveTo writes the configuration to configPath.
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("%w: error creating config directory: %v", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: error serializing configuration: %v", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	c.path = configPath
	return nil
}

// DefaultPath returns ~/.config/kde-theme-backup/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", common.ConfigDirName, common.ConfigFileName), nil
}
