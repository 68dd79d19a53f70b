package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bulk-reviewer/brv/pkg/shared/files"
)

var validLogLevels = map[string]bool{
	"": true, "TRACE": true, "DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
}

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateBRVConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: brv directive is invalid: %w", err)
	}
	if err := ValidateLoggerConfig(&cfg.Logger); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateToolsConfig(&cfg.Tools); err != nil {
		return fmt.Errorf("YAML global config: tools directive is invalid: %w", err)
	}
	if err := ValidateScanConfig(&cfg.Scan); err != nil {
		return fmt.Errorf("YAML global config: scan directive is invalid: %w", err)
	}
	return nil
}

// ValidateBRVConfig resolves the brv folders from the environment and creates them.
func ValidateBRVConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("brv configuration is nil")
	}
	if err := updateHome(cfg); err != nil {
		return fmt.Errorf("failed to update home folder: %w", err)
	}
	if err := updateFolder(&cfg.BRV.SessionsFolder, "BRV_SESSIONS_FOLDER", GetSessionsHome(cfg)); err != nil {
		return fmt.Errorf("failed to update sessions folder: %w", err)
	}
	if err := updateFolder(&cfg.BRV.TempFolder, "BRV_TEMP_FOLDER", GetTempHome(cfg)); err != nil {
		return fmt.Errorf("failed to update temp folder: %w", err)
	}
	return nil
}

// ValidateLoggerConfig checks the logger level.
func ValidateLoggerConfig(l *Logger) error {
	if l == nil {
		return fmt.Errorf("logger configuration is nil")
	}
	if !validLogLevels[strings.ToUpper(l.Level)] {
		return fmt.Errorf("unknown log level %q", l.Level)
	}
	return nil
}

// ValidateToolsConfig checks the external tool settings.
func ValidateToolsConfig(t *Tools) error {
	if t == nil {
		return fmt.Errorf("tools configuration is nil")
	}
	return validateDuration(t.Timeout, "timeout", 72*time.Hour)
}

// ValidateScanConfig checks the scanner defaults.
func ValidateScanConfig(s *Scan) error {
	if s == nil {
		return fmt.Errorf("scan configuration is nil")
	}
	if s.SSNMode != nil && (*s.SSNMode < 0 || *s.SSNMode > 2) {
		return fmt.Errorf("ssn_mode must be 0, 1 or 2: %d", *s.SSNMode)
	}
	if s.Stoplists != "" {
		info, err := os.Stat(s.Stoplists)
		if err != nil {
			return fmt.Errorf("stoplists folder %q: %w", s.Stoplists, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("stoplists %q is not a directory", s.Stoplists)
		}
	}
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// updateHome updates the HomeFolder from environment variables or sets a default value.
func updateHome(cfg *Config) error {
	if home := os.Getenv("BRV_HOME"); home != "" {
		cfg.BRV.HomeFolder = home
	} else if cfg.BRV.HomeFolder == "" {
		home, err := defaultHome()
		if err != nil {
			return err
		}
		cfg.BRV.HomeFolder = home
	}

	expanded, err := files.ExpandPath(cfg.BRV.HomeFolder)
	if err != nil {
		return fmt.Errorf("failed to expand home path %q: %w", cfg.BRV.HomeFolder, err)
	}
	cfg.BRV.HomeFolder = expanded

	if err := files.CreateFolderIfNotExists(expanded); err != nil {
		return fmt.Errorf("failed to create home folder %q: %w", expanded, err)
	}
	return nil
}

// updateFolder sets folder from envVar or fallback, expands it and creates it.
func updateFolder(folder *string, envVar, fallback string) error {
	if v := os.Getenv(envVar); v != "" {
		*folder = v
	} else if *folder == "" {
		*folder = fallback
	}

	expanded, err := files.ExpandPath(*folder)
	if err != nil {
		return fmt.Errorf("failed to expand path %q: %w", *folder, err)
	}
	*folder = expanded

	if err := files.CreateFolderIfNotExists(expanded); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", expanded, err)
	}
	return nil
}
