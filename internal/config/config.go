// Package config loads the engine configuration.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "pocketscene.json"

// DisplayConfig describes the panel geometry.
type DisplayConfig struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	FontWidth  int `json:"fontWidth"`
	FontHeight int `json:"fontHeight"`
}

// Config holds the engine settings.
type Config struct {
	MaxLineLength   int           `json:"maxLineLength"`
	MaxLinesPerPage int           `json:"maxLinesPerPage"`
	ScrollBudget    int           `json:"scrollBudget"`
	Display         DisplayConfig `json:"display"`

	// RootDir is where the files scene starts.
	RootDir    string `json:"rootDir"`
	SettingsDB string `json:"settingsDb"`

	// Interpreters maps a script language to the command that runs it.
	Interpreters map[string]string `json:"interpreters"`
	// RunTimeoutSeconds bounds a script run. 0 disables the timeout.
	RunTimeoutSeconds int `json:"runTimeoutSeconds"`
	// Autosave is a cron spec (seconds field included). Empty disables it.
	Autosave string `json:"autosave"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxLineLength:   37,
		MaxLinesPerPage: 9,
		ScrollBudget:    1,
		Display: DisplayConfig{
			Width:      240,
			Height:     135,
			FontWidth:  6,
			FontHeight: 12,
		},
		RootDir:    ".",
		SettingsDB: "pocketscene.db",
		Interpreters: map[string]string{
			"lua":    "lua",
			"python": "python3",
		},
	}
}

// RunTimeout returns the script run timeout, 0 meaning none.
func (c Config) RunTimeout() time.Duration {
	if c.RunTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}

// Validate checks the values the engine cannot work around.
func (c Config) Validate() error {
	var problems []string
	if c.MaxLineLength <= 0 {
		problems = append(problems, "maxLineLength must be positive")
	}
	if c.MaxLinesPerPage <= 0 {
		problems = append(problems, "maxLinesPerPage must be positive")
	}
	if c.ScrollBudget < 0 {
		problems = append(problems, "scrollBudget must not be negative")
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		problems = append(problems, "display size must be positive")
	}
	if c.Display.FontWidth <= 0 || c.Display.FontHeight <= 0 {
		problems = append(problems, "font size must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads the configuration at path. A missing file yields the defaults
// and missing fields keep their default values.
func Load(path string) (Config, error) {
	log.Printf("INFO: Loading configuration from %s", path)
	defaultConfig := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("WARN: %s not found. Using default settings.", path)
			return defaultConfig, nil
		}
		return defaultConfig, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := defaultConfig
	if err := json.Unmarshal(data, &config); err != nil {
		log.Printf("ERROR: Failed to parse config JSON from %s: %v. Using default settings.", path, err)
		return defaultConfig, fmt.Errorf("failed to parse config JSON from %s: %w", path, err)
	}
	if len(config.Interpreters) == 0 {
		config.Interpreters = defaultConfig.Interpreters
	}
	if err := config.Validate(); err != nil {
		return defaultConfig, fmt.Errorf("%s: %w", path, err)
	}

	log.Printf("INFO: Successfully loaded configuration from %s", path)
	return config, nil
}

// Save writes c to path as indented JSON.
func Save(path string, c Config) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
