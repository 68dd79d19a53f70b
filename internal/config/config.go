package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigName is the config file looked up in the brv home folder.
const DefaultConfigName = "config.yml"

// Config represents the entire YAML configuration.
type Config struct {
	BRV    BRV    `yaml:"brv"`
	Logger Logger `yaml:"logger"`
	Tools  Tools  `yaml:"tools"`
	Scan   Scan   `yaml:"scan"`
}

// BRV holds folder locations used by the tool.
type BRV struct {
	HomeFolder     string `yaml:"home_folder"`
	SessionsFolder string `yaml:"sessions_folder"`
	TempFolder     string `yaml:"temp_folder"`
}

// Logger configures hclog output.
type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
	ToFile          *bool  `yaml:"to_file"`
	File            string `yaml:"file"`
}

// Tools points at the external forensic binaries.
type Tools struct {
	BulkExtractor string        `yaml:"bulk_extractor"`
	Fiwalk        string        `yaml:"fiwalk"`
	Icat          string        `yaml:"icat"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Scan holds scanner defaults that CLI flags may override.
type Scan struct {
	SSNMode        *int   `yaml:"ssn_mode"`
	Stoplists      string `yaml:"stoplists"`
	IncludeNetwork bool   `yaml:"include_network"`
	IncludeEXIF    bool   `yaml:"include_exif"`
}

// ValidateConfigPath checks that path exists and is a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return fmt.Errorf("failed to decode %q: %w", configPath, err)
	}

	return nil
}

// LoadConfig reads the configuration from configPath.
// An empty configPath falls back to BRV_CONFIG and then to <home>/config.yml;
// a missing default file yields an empty configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	explicit := true
	if configPath == "" {
		configPath = os.Getenv("BRV_CONFIG")
	}
	if configPath == "" {
		explicit = false
		home, err := defaultHome()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(home, DefaultConfigName)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) && !explicit {
		return cfg, nil
	}

	if err := LoadYAML(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultHome() (string, error) {
	if home := os.Getenv("BRV_HOME"); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get user home folder: %w", err)
	}
	return filepath.Join(userHome, "bulk-reviewer"), nil
}
