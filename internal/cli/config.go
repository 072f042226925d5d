package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/willdrewes/easy-curl-client/client/throttle"
)

// Config is the CLI configuration, merged from flags, EASYCURL_*
// environment variables and an optional easycurl.yaml file.
type Config struct {
	Timeout     time.Duration   `mapstructure:"timeout"`
	UserAgent   string          `mapstructure:"user_agent"`
	DownloadDir string          `mapstructure:"download_dir"`
	Throttle    throttle.Config `mapstructure:"throttle"`
	Log         LogConfig       `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// flagKeys maps config keys to the persistent flags that set them.
var flagKeys = map[string]string{
	"timeout":        "timeout",
	"user_agent":     "user-agent",
	"download_dir":   "dir",
	"throttle.rps":   "rps",
	"throttle.burst": "burst",
	"log.level":      "log-level",
	"log.format":     "log-format",
}

func loadConfig(v *viper.Viper, flags *pflag.FlagSet, configFile string) (Config, error) {
	v.SetEnvPrefix("EASYCURL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("download_dir", os.TempDir())
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	for key, flag := range flagKeys {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("binding flag %s: %w", flag, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("easycurl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(dir + "/easycurl")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Throttle.Enabled() {
		if err := cfg.Throttle.Validate(); err != nil {
			return Config{}, fmt.Errorf("throttle: %w", err)
		}
	}

	return cfg, nil
}

func newLogger(w io.Writer, cfg LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}
