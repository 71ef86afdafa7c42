/*
Package config manages TOML config for SnipServe services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Detector DetectorConfig `toml:"detector"`
	Snippets SnippetsConfig `toml:"snippets"`
	CLI      CliConfig      `toml:"cli"`
}

// DetectorConfig has trigger detection options.
type DetectorConfig struct {
	Prefix           string `toml:"prefix"`
	MaxTriggerLength int    `toml:"max_trigger_length"`
	CaseSensitive    bool   `toml:"case_sensitive"`
}

// SnippetsConfig holds snippet store options.
type SnippetsConfig struct {
	File  string `toml:"file"`
	Watch bool   `toml:"watch"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	ShowContent bool `toml:"show_content"`
	MaxPreview  int  `toml:"max_preview"`
}

// PrefixRune returns the configured prefix as a rune, falling back to ';'
// when the config value is empty or not a single character.
func (dc DetectorConfig) PrefixRune() rune {
	runes := []rune(dc.Prefix)
	if len(runes) != 1 {
		return ';'
	}
	return runes[0]
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "snipserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "snipserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/snipserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Detector: DetectorConfig{
			Prefix:           ";",
			MaxTriggerLength: 100,
			CaseSensitive:    false,
		},
		Snippets: SnippetsConfig{
			File:  "snippets.toml",
			Watch: true,
		},
		CLI: CliConfig{
			ShowContent: false,
			MaxPreview:  48,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to salvage whatever sections of a broken TOML
// file still parse.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if detectorSection, ok := utils.ExtractSection(tempConfig, "detector"); ok {
		extractDetectorConfig(detectorSection, &config.Detector)
	}
	if snippetsSection, ok := utils.ExtractSection(tempConfig, "snippets"); ok {
		extractSnippetsConfig(snippetsSection, &config.Snippets)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	return config, nil
}

// extractDetectorConfig extracts detector configuration from a map
func extractDetectorConfig(data map[string]any, detector *DetectorConfig) {
	if val, ok := utils.ExtractString(data, "prefix"); ok {
		detector.Prefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_trigger_length"); ok {
		detector.MaxTriggerLength = val
	}
	if val, ok := utils.ExtractBool(data, "case_sensitive"); ok {
		detector.CaseSensitive = val
	}
}

// extractSnippetsConfig extracts snippet store configuration from a map
func extractSnippetsConfig(data map[string]any, snippets *SnippetsConfig) {
	if val, ok := utils.ExtractString(data, "file"); ok {
		snippets.File = val
	}
	if val, ok := utils.ExtractBool(data, "watch"); ok {
		snippets.Watch = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "show_content"); ok {
		cli.ShowContent = val
	}
	if val, ok := utils.ExtractInt64(data, "max_preview"); ok {
		cli.MaxPreview = val
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the detector config values and saves to file. Nil fields
// keep their current values.
func (c *Config) Update(configPath string, prefix *string, maxTriggerLength *int, caseSensitive *bool) error {
	detector := &c.Detector
	if prefix != nil {
		detector.Prefix = *prefix
	}
	if maxTriggerLength != nil {
		detector.MaxTriggerLength = *maxTriggerLength
	}
	if caseSensitive != nil {
		detector.CaseSensitive = *caseSensitive
	}
	if configPath == "" {
		return nil
	}
	return SaveConfig(c, configPath)
}
