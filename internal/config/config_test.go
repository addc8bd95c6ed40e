package config

import (
	"os"
	"path/filepath"
	"testing"

	"image-workbench/internal/logger"
	"image-workbench/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, models.DefaultHistoryCapacity, cfg.History.Capacity)
	assert.Equal(t, 95, cfg.Output.JPEGQuality)
	assert.Equal(t, models.DefaultParameters(), cfg.Defaults)
	assert.Equal(t, logger.InfoLevel, cfg.LogLevel())
}

func TestLoadOverridesFromFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[history]
capacity = 5

[logging]
level = "warn"

[defaults]
kernel_size = 5
sigma = 2.5
cutoff = 40

[metrics]
addr = "127.0.0.1:9464"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.History.Capacity)
	assert.Equal(t, logger.WarnLevel, cfg.LogLevel())
	assert.Equal(t, 5, cfg.Defaults.KernelSize)
	assert.Equal(t, 2.5, cfg.Defaults.Sigma)
	assert.Equal(t, 40, cfg.Defaults.Cutoff)
	assert.Equal(t, uint8(255), cfg.Defaults.ContrastMax)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Addr)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DEBUG", "1")
	t.Setenv("IMAGE_WORKBENCH_HISTORY", "7")
	t.Setenv("IMAGE_WORKBENCH_METRICS_ADDR", ":9000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, logger.DebugLevel, cfg.LogLevel())
	assert.Equal(t, 7, cfg.History.Capacity)
	assert.Equal(t, ":9000", cfg.Metrics.Addr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "")

	tests := map[string]string{
		"capacity": "[history]\ncapacity = 0\n",
		"quality":  "[output]\njpeg_quality = 150\n",
		"format":   "[output]\ndefault_format = \"webp\"\n",
		"sigma":    "[defaults]\nsigma = -1.0\n",
		"level":    "[logging]\nlevel = \"loud\"\n",
		"syntax":   "[history\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.History.Capacity = 12
	cfg.Defaults.Cutoff = 55

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.History.Capacity)
	assert.Equal(t, 55, loaded.Defaults.Cutoff)
}
