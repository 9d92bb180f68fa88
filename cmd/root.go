package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/driveloader/internal/config"
	"github.com/tanq16/driveloader/internal/output"
	"github.com/tanq16/driveloader/internal/utils"
)

var DriveLoaderVersion = "dev"

var (
	configPath       string
	globalConfig     *config.Config
	globalHTTPConfig utils.HTTPClientConfig
	logCloser        io.Closer
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "driveloader",
		Short:         "Resumable downloader for Google Drive videos",
		Version:       DriveLoaderVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			closer, err := utils.InitLogger(cfg.Debug, cfg.LogFile)
			if err != nil {
				return err
			}
			logCloser = closer
			globalConfig = cfg
			globalHTTPConfig = cfg.HTTPClientConfig()
			log.Debug().Str("op", "cmd/root").Msgf("configuration loaded: workers=%d timeout=%s", cfg.Workers, cfg.Timeout)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser.Close()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default $HOME/.config/driveloader/config.yaml)")
	flags.IntP("workers", "w", 1, "Number of downloads to run in parallel")
	flags.DurationP("timeout", "t", utils.DefaultTimeout, "Inactivity timeout for requests and body reads (eg. 30s, 2m)")
	flags.DurationP("keep-alive-timeout", "k", utils.DefaultKATimeout, "Keep-alive timeout for idle connections")
	flags.StringP("user-agent", "a", utils.DefaultUserAgent, "User agent, or 'randomize' to pick a browser agent")
	flags.StringP("proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	flags.String("proxy-username", "", "Proxy username (if not provided in proxy URL)")
	flags.String("proxy-password", "", "Proxy password (if not provided in proxy URL)")
	flags.StringArrayP("header", "H", []string{}, "Custom headers (like 'Accept-Language: en'); can be specified multiple times")
	flags.String("cookie-file", "", "JSON file with Google session cookies")
	flags.Bool("debug", false, "Enable debug logging to stderr")
	flags.String("log-file", "", "Write logs to this file")

	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newCookiesCmd())
	return rootCmd
}

// signalContext is cancelled on SIGINT or SIGTERM so in-flight downloads stop cleanly and
// keep their partial files for a later resume.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func Execute() {
	start := time.Now()
	if err := newRootCmd().Execute(); err != nil {
		output.PrintError(fmt.Sprintf("Error: %v", err))
		log.Error().Str("op", "cmd/root").Err(err).Msgf("run failed after %s", time.Since(start).Round(time.Millisecond))
		os.Exit(1)
	}
}
