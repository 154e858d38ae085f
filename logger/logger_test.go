package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogLevels(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
		{"bogus", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")
			cfg := FileConfig{Path: logFile, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}
			require.NoError(t, InitWithFileConfig(tt.level, cfg, false))

			Debug("debug message")
			Info("info message", zap.Int("particles", 12))
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			require.NoError(t, err)
			for _, exp := range tt.expected {
				assert.Contains(t, string(content), exp)
			}
			for _, exc := range tt.excluded {
				assert.NotContains(t, string(content), exc)
			}
		})
	}
}

func TestStructuredFields(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "fields.log")
	require.NoError(t, InitWithFileConfig("info", DefaultFileConfig(logFile), false))

	Info("sampled mesh", zap.Int("particles", 4096), zap.Float64("voxelSize", 0.05))
	Sugar.Infof("wrote %s", "particles.bin")
	Sync()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "sampled mesh")
	assert.Contains(t, string(content), `"particles": 4096`)
	assert.Contains(t, string(content), "wrote particles.bin")
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/mpm.log")
	assert.Equal(t, "/tmp/mpm.log", cfg.Path)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 5, cfg.MaxBackups)
	assert.Equal(t, 30, cfg.MaxAgeDays)
	assert.True(t, cfg.Compress)
}

func TestValidLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		assert.True(t, ValidLevel(lvl))
	}
	assert.False(t, ValidLevel("trace"))
	assert.False(t, ValidLevel(""))
}
