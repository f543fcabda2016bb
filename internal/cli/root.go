package cli

import (
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagAddr      string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
)

// NewRootCmd creates the root cobra command for the streamsafe console.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "streamsafe",
		Short:        "StreamSafe video platform console",
		Long:         "StreamSafe serves the web console for the StreamSafe video platform: sign-in, the video library with live processing status, and organization administration.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Shorthand for --log-level=debug")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")

	root.AddCommand(
		newServeCmd(),
		newVersionCmd(),
	)

	return root
}
