package config

import (
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

const (
	defaultTimeout = 12 * time.Hour
	defaultSSNMode = 1
)

// GetBoolValue retrieves a boolean value from a nested struct based on a dot-separated path.
// It returns the provided defaultValue if the specified field is not explicitly set or is nil.
func GetBoolValue(config interface{}, fieldPath string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	fields := strings.Split(fieldPath, ".")
	val := reflect.ValueOf(config)

	for _, field := range fields {
		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return defaultValue
			}
			val = val.Elem()
		}

		val = val.FieldByName(field)
		if !val.IsValid() {
			return defaultValue
		}
	}

	if val.Kind() == reflect.Ptr && !val.IsNil() {
		return val.Elem().Bool()
	} else if val.Kind() == reflect.Bool {
		return val.Bool()
	}

	return defaultValue
}

// SetThen returns value if it is not the zero value, otherwise defaultValue.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(value).IsZero() {
		return defaultValue
	}
	return value
}

// GetHome returns the brv home folder.
func GetHome(cfg *Config) string {
	if cfg != nil && cfg.BRV.HomeFolder != "" {
		return cfg.BRV.HomeFolder
	}
	home, err := defaultHome()
	if err != nil {
		return "bulk-reviewer"
	}
	return home
}

// GetSessionsHome returns the folder where session databases are kept.
func GetSessionsHome(cfg *Config) string {
	if cfg != nil && cfg.BRV.SessionsFolder != "" {
		return cfg.BRV.SessionsFolder
	}
	return filepath.Join(GetHome(cfg), "sessions")
}

// GetTempHome returns the folder for temporary files.
func GetTempHome(cfg *Config) string {
	if cfg != nil && cfg.BRV.TempFolder != "" {
		return cfg.BRV.TempFolder
	}
	return filepath.Join(GetHome(cfg), "tmp")
}

// GetLogFile returns the path of the log file.
func GetLogFile(cfg *Config) string {
	if cfg != nil && cfg.Logger.File != "" {
		return cfg.Logger.File
	}
	return filepath.Join(GetHome(cfg), "bulk-reviewer.log")
}

// GetToolPath resolves the configured binary for a tool, falling back to PATH lookup.
func GetToolPath(configured, name string) string {
	if configured != "" {
		return configured
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	return name
}

// GetToolTimeout returns the time budget for a single external tool run.
func GetToolTimeout(cfg *Config) time.Duration {
	if cfg == nil {
		return defaultTimeout
	}
	return SetThen(cfg.Tools.Timeout, defaultTimeout)
}

// GetSSNMode returns the configured scanner ssn_mode, defaulting to 1.
func GetSSNMode(cfg *Config) int {
	if cfg == nil || cfg.Scan.SSNMode == nil {
		return defaultSSNMode
	}
	return NormalizeSSNMode(*cfg.Scan.SSNMode)
}

// NormalizeSSNMode accepts 0, 1 and 2; everything else becomes 1.
func NormalizeSSNMode(mode int) int {
	switch mode {
	case 0, 1, 2:
		return mode
	default:
		return defaultSSNMode
	}
}
