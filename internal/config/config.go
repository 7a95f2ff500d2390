package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultServerURL     = "http://localhost:8000"
	DefaultTimeout       = 120 * time.Second
	DefaultRetryMax      = 2
	DefaultCollapseLimit = 200
)

// Config holds runtime configuration values.
type Config struct {
	ServerURL     string
	Timeout       time.Duration
	RetryMax      int
	CollapseLimit int
	Session       string
	Live          bool
	Quiet         bool
	Verbose       bool
	LogFile       string
}

type rawConfig struct {
	ServerURL     string `mapstructure:"server_url"`
	Timeout       string `mapstructure:"timeout"`
	RetryMax      int    `mapstructure:"retry_max"`
	CollapseLimit int    `mapstructure:"collapse_limit"`
	Session       string `mapstructure:"session"`
	Live          bool   `mapstructure:"live"`
	Quiet         bool   `mapstructure:"quiet"`
	Verbose       bool   `mapstructure:"verbose"`
	LogFile       string `mapstructure:"log_file"`
}

// Load resolves configuration from defaults, config files, env, and flags.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_url", DefaultServerURL)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("retry_max", DefaultRetryMax)
	v.SetDefault("collapse_limit", DefaultCollapseLimit)
	v.SetDefault("session", "")
	v.SetDefault("live", true)
	v.SetDefault("quiet", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_file", "")

	if cmd != nil {
		_ = v.BindPFlag("server_url", cmd.Flags().Lookup("server"))
		_ = v.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
		_ = v.BindPFlag("retry_max", cmd.Flags().Lookup("retry-max"))
		_ = v.BindPFlag("collapse_limit", cmd.Flags().Lookup("collapse-limit"))
		_ = v.BindPFlag("session", cmd.Flags().Lookup("session"))
		_ = v.BindPFlag("live", cmd.Flags().Lookup("live"))
		_ = v.BindPFlag("quiet", cmd.Flags().Lookup("quiet"))
		_ = v.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
		_ = v.BindPFlag("log_file", cmd.Flags().Lookup("log-file"))
	}

	if seconds := os.Getenv("DOCQ_TIMEOUT_SECONDS"); seconds != "" {
		v.Set("timeout", seconds+"s")
	}

	if err := loadConfigFile(v); err != nil {
		return Config{}, err
	}

	var raw rawConfig
	decoder, _ := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &raw})
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Config{}, err
	}

	timeout := DefaultTimeout
	if raw.Timeout != "" {
		parsed, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timeout duration: %w", err)
		}
		timeout = parsed
	}

	cfg := Config{
		ServerURL:     raw.ServerURL,
		Timeout:       timeout,
		RetryMax:      raw.RetryMax,
		CollapseLimit: raw.CollapseLimit,
		Session:       raw.Session,
		Live:          raw.Live,
		Quiet:         raw.Quiet,
		Verbose:       raw.Verbose,
		LogFile:       raw.LogFile,
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.CollapseLimit <= 0 {
		cfg.CollapseLimit = DefaultCollapseLimit
	}
	if cfg.Quiet {
		cfg.Live = false
	}

	return cfg, nil
}

func loadConfigFile(v *viper.Viper) error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	base := filepath.Join(configDir, "docq")
	candidates := []string{
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
		filepath.Join(base, "config.json"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return err
			}
			return nil
		}
	}
	return nil
}
