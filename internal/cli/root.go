// Package cli implements the easycurl command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/willdrewes/easy-curl-client/client"
	"github.com/willdrewes/easy-curl-client/curl"
)

// Version information (set by build flags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries what every subcommand needs once flags and config are read.
type app struct {
	v      *viper.Viper
	cfg    Config
	logger *slog.Logger
}

// NewRootCmd builds the command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "easycurl",
		Short: "Build, send and download single HTTP requests",
		Long: `easycurl - a configurable HTTP request builder

Send one request and print the response, stream a resource to disk,
or upload a file as multipart form data.

Settings come from flags, EASYCURL_* environment variables, or an
easycurl.yaml file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configFile, _ := cmd.Flags().GetString("config")

			cfg, err := loadConfig(a.v, cmd.Flags(), configFile)
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (default ./easycurl.yaml)")
	pf.Duration("timeout", 30*time.Second, "Request timeout")
	pf.StringP("user-agent", "A", "", "User-Agent header")
	pf.String("dir", "", "Download directory (default system temp dir)")
	pf.Int("rps", 0, "Throttle to this many requests per second (0 disables)")
	pf.Int("burst", 0, "Throttle burst size")
	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newExecCmd(a),
		newDownloadCmd(a),
		newUploadCmd(a),
		newVersionCmd(),
	)

	return root
}

// Execute runs the command tree against ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// clientOptions turns the loaded config into transport options.
func (a *app) clientOptions() []client.Option {
	opts := []client.Option{
		client.WithLogger(a.logger),
		client.WithTimeout(a.cfg.Timeout),
	}
	if a.cfg.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(a.cfg.UserAgent))
	}
	if a.cfg.Throttle.Enabled() {
		opts = append(opts, client.WithThrottle(a.cfg.Throttle.RPS, a.cfg.Throttle.Burst))
	}
	return opts
}

func (a *app) newCurl(extra ...curl.Option) (*curl.Curl, error) {
	opts := []curl.Option{
		curl.WithLogger(a.logger),
		curl.WithDownloadDir(a.cfg.DownloadDir),
		curl.WithClientOptions(a.clientOptions()...),
	}
	return curl.New(append(opts, extra...)...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "easycurl %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
