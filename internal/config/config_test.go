package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yml")
	content := `
brv:
  home_folder: ` + tmpDir + `
logger:
  level: debug
  json_format: true
tools:
  icat: /opt/sleuthkit/bin/icat
  timeout: 30m
scan:
  ssn_mode: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, tmpDir, cfg.BRV.HomeFolder)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, GetBoolValue(cfg, "Logger.JSONFormat", false))
	assert.True(t, GetBoolValue(cfg, "Logger.DisableTime", true))
	assert.Equal(t, "/opt/sleuthkit/bin/icat", cfg.Tools.Icat)
	assert.Equal(t, 30*time.Minute, GetToolTimeout(cfg))
	assert.Equal(t, 2, GetSSNMode(cfg))
}

func TestLoadConfigMissingDefault(t *testing.T) {
	t.Setenv("BRV_HOME", t.TempDir())
	t.Setenv("BRV_CONFIG", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 1, GetSSNMode(cfg))
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("BRV_HOME", home)
	t.Setenv("BRV_SESSIONS_FOLDER", "")
	t.Setenv("BRV_TEMP_FOLDER", "")

	mode := 5
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "empty config", cfg: &Config{}},
		{name: "bad log level", cfg: &Config{Logger: Logger{Level: "loud"}}, wantErr: true},
		{name: "negative timeout", cfg: &Config{Tools: Tools{Timeout: -time.Second}}, wantErr: true},
		{name: "bad ssn mode", cfg: &Config{Scan: Scan{SSNMode: &mode}}, wantErr: true},
		{name: "missing stoplists", cfg: &Config{Scan: Scan{Stoplists: filepath.Join(home, "nope")}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, home, tt.cfg.BRV.HomeFolder)
			assert.DirExists(t, filepath.Join(home, "sessions"))
			assert.DirExists(t, filepath.Join(home, "tmp"))
		})
	}
}

func TestNormalizeSSNMode(t *testing.T) {
	assert.Equal(t, 0, NormalizeSSNMode(0))
	assert.Equal(t, 2, NormalizeSSNMode(2))
	assert.Equal(t, 1, NormalizeSSNMode(7))
	assert.Equal(t, 1, NormalizeSSNMode(-1))
}

func TestGetBoolValueNilPointer(t *testing.T) {
	var cfg *Config
	assert.True(t, GetBoolValue(cfg, "Logger.ToFile", true))
}
