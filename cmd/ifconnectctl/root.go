package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skybound-dev/ifconnect/pkg/client"
	"github.com/skybound-dev/ifconnect/pkg/config"
	"github.com/skybound-dev/ifconnect/pkg/output"
)

var (
	cfgFile          string
	hostFlag         string
	portFlag         int
	keepAliveFlag    bool
	noReconnectFlag  bool
	timeoutFlag      string
	manifestTimeFlag string
	pollThrottleFlag string
	logLevelFlag     string
	outputFormatFlag string

	cfg       *config.Config
	formatter output.Formatter
)

var rootCmd = &cobra.Command{
	Use:   "ifconnectctl",
	Short: "Operator CLI for the Infinite Flight Connect v2 client",
	Long: `ifconnectctl discovers, reads, writes, invokes, and watches commands
against a running Infinite Flight simulator, built entirely on the public
ifconnect client library.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if hostFlag != "" {
			cfg.Host = hostFlag
		}
		if portFlag != 0 {
			cfg.Port = portFlag
		}
		if cmd.Flags().Changed("keep-alive") {
			cfg.KeepAlive = keepAliveFlag
		}
		if noReconnectFlag {
			cfg.Reconnect = false
		}
		if timeoutFlag != "" {
			cfg.Timeout = timeoutFlag
		}
		if manifestTimeFlag != "" {
			cfg.ManifestTimeout = manifestTimeFlag
		}
		if pollThrottleFlag != "" {
			cfg.PollThrottle = pollThrottleFlag
		}
		if logLevelFlag != "" {
			cfg.LogLevel = logLevelFlag
		}
		if outputFormatFlag != "" {
			cfg.OutputFormat = outputFormatFlag
		}

		formatter = output.NewFormatter(cfg.OutputFormat)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// RootCmd returns the root cobra.Command, for integration tests.
func RootCmd() *cobra.Command {
	return rootCmd
}

// SetFormatter allows tests to inject a formatter without going through
// PersistentPreRunE.
func SetFormatter(f output.Formatter) {
	formatter = f
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.ifconnect/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "simulator host (skips UDP discovery when set)")
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", 0, "simulator TCP port (default 10112)")
	rootCmd.PersistentFlags().BoolVar(&keepAliveFlag, "keep-alive", false, "enable TCP keepalive on both sessions")
	rootCmd.PersistentFlags().BoolVar(&noReconnectFlag, "no-reconnect", false, "disable automatic session reconnect")
	rootCmd.PersistentFlags().StringVar(&timeoutFlag, "timeout", "", "session read timeout, e.g. \"5s\" (default: none)")
	rootCmd.PersistentFlags().StringVar(&manifestTimeFlag, "manifest-timeout", "", "manifest load timeout, e.g. \"1s\"")
	rootCmd.PersistentFlags().StringVar(&pollThrottleFlag, "poll-throttle", "", "delay between poll dispatches, e.g. \"250ms\"")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "diagnostic log verbosity (quiet, info)")
	rootCmd.PersistentFlags().StringVarP(&outputFormatFlag, "output", "o", "", "output format: table, json, yaml (default \"table\")")
}

// clientOptions converts the resolved cfg into client.Option values.
func clientOptions() ([]client.Option, error) {
	var opts []client.Option
	if cfg.Host != "" {
		opts = append(opts, client.WithHostPort(cfg.Host, cfg.Port))
	}
	opts = append(opts, client.WithKeepAlive(cfg.KeepAlive))
	opts = append(opts, client.WithReconnect(cfg.Reconnect))

	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", cfg.Timeout, err)
		}
		opts = append(opts, client.WithTimeout(d))
	}
	if cfg.ManifestTimeout != "" {
		d, err := time.ParseDuration(cfg.ManifestTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --manifest-timeout %q: %w", cfg.ManifestTimeout, err)
		}
		opts = append(opts, client.WithManifestTimeout(d))
	}
	if cfg.PollThrottle != "" {
		d, err := time.ParseDuration(cfg.PollThrottle)
		if err != nil {
			return nil, fmt.Errorf("invalid --poll-throttle %q: %w", cfg.PollThrottle, err)
		}
		opts = append(opts, client.WithPollThrottle(d))
	}

	if cfg.LogLevel == "quiet" {
		opts = append(opts, client.WithLogger(log.New(io.Discard, "", 0)))
	}

	return opts, nil
}

// dial builds a Client from the resolved configuration and initializes it:
// discovery (if no --host), manifest load, and both long-lived sessions.
func dial(ctx context.Context) (*client.Client, error) {
	opts, err := clientOptions()
	if err != nil {
		return nil, err
	}
	c := client.New(opts...)
	if err := c.Init(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return c, nil
}
