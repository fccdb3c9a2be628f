package config

import (
	"fmt"
	"strings"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/report"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyOutputDir    = "output.dir"
	KeyOutputPrefix = "output.prefix"
	KeyAppend       = "output.append"
	KeyFullStats    = "report.full"
	KeyReportFormat = "report.format"
	KeyHistoryPath  = "history.path"
	KeyProgress     = "progress"
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
)

// Config is the resolved configuration of a filter run.
type Config struct {
	OutputDir   string
	Prefix      string
	Format      report.Format
	HistoryPath string
	LogLevel    string
	LogFormat   string
	Append      bool
	Full        bool
	Progress    bool
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyOutputPrefix, "")
	v.SetDefault(KeyAppend, false)
	v.SetDefault(KeyFullStats, false)
	v.SetDefault(KeyReportFormat, string(report.FormatText))
	v.SetDefault(KeyHistoryPath, "")
	v.SetDefault(KeyProgress, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		OutputDir:   ExpandPath(v.GetString(KeyOutputDir)),
		Prefix:      v.GetString(KeyOutputPrefix),
		Append:      v.GetBool(KeyAppend),
		Full:        v.GetBool(KeyFullStats),
		Format:      report.Format(strings.ToLower(v.GetString(KeyReportFormat))),
		HistoryPath: ExpandPath(v.GetString(KeyHistoryPath)),
		Progress:    v.GetBool(KeyProgress),
		LogLevel:    v.GetString(KeyLogLevel),
		LogFormat:   v.GetString(KeyLogFormat),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that flags and files cannot constrain themselves.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output directory cannot be empty", common.ErrInvalidConfig)
	}
	if strings.ContainsAny(c.Prefix, `/\`) {
		return fmt.Errorf("%w: prefix %q cannot contain path separators", common.ErrInvalidConfig, c.Prefix)
	}
	if _, err := report.ParseFormat(string(c.Format)); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json", "":
	default:
		return fmt.Errorf("%w: invalid log format %q", common.ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
