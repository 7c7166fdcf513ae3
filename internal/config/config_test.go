package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORGS_DATA_DIR", dir)
	t.Setenv("ORGS_LANG", "de_DE.UTF-8")

	c, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, dir, c.DataDir)
	assert.Equal(t, filepath.Join(dir, "servers.db"), c.DBPath)
	assert.Equal(t, filepath.Join(dir, "orgs.log"), c.LogFile)
	assert.Equal(t, 30*time.Second, c.ValidateTimeout)
	assert.Equal(t, ResolverSystem, c.Resolver)
	assert.Equal(t, "de_DE.UTF-8", c.Lang)
	assert.Equal(t, "orgs/1.0", c.UserAgent)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "orgs.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"data_dir: "+dir+"\nvalidate_timeout: 5s\nresolver: 9.9.9.9:53\nlog_level: debug\n"), 0o600))
	t.Setenv("ORGS_RESOLVER", "off")

	c, err := Load(viper.New(), file)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, c.ValidateTimeout)
	assert.Equal(t, ResolverOff, c.Resolver, "environment wins over the file")
	level, ok := c.SlogLevel()
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_NegativeTimeout(t *testing.T) {
	t.Setenv("ORGS_DATA_DIR", t.TempDir())
	t.Setenv("ORGS_VALIDATE_TIMEOUT", "-1s")

	_, err := Load(viper.New(), "")
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"", slog.LevelInfo, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := (&Config{LogLevel: tt.in}).SlogLevel()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
