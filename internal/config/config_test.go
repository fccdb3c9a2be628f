package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/report"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Config{
		OutputDir: ".",
		Format:    report.FormatText,
		LogLevel:  "info",
		LogFormat: "console",
	}, cfg)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `output:
  dir: /data/out
  prefix: run1_
  append: true
report:
  full: true
  format: TABLE
progress: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, "run1_", cfg.Prefix)
	assert.True(t, cfg.Append)
	assert.True(t, cfg.Full)
	assert.True(t, cfg.Progress)
	assert.Equal(t, report.FormatTable, cfg.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		set  map[string]any
		name string
	}{
		{name: "empty output dir", set: map[string]any{KeyOutputDir: " "}},
		{name: "prefix with separator", set: map[string]any{KeyOutputPrefix: "a/b"}},
		{name: "unknown report format", set: map[string]any{KeyReportFormat: "xml"}},
		{name: "unknown log level", set: map[string]any{KeyLogLevel: "chatty"}},
		{name: "unknown log format", set: map[string]any{KeyLogFormat: "logfmt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			for k, val := range tt.set {
				v.Set(k, val)
			}

			_, err := Load(v)
			require.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SIFT_TEST_DIR", "/var/sift")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "out"), ExpandPath("~/out"))
	assert.Equal(t, "/var/sift/out", ExpandPath("$SIFT_TEST_DIR/out"))
	assert.Equal(t, "relative", ExpandPath("relative"))
}
