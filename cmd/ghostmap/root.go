package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/hazyhaar/ghostmap/ghost"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	cfg    *ghost.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ghostmap",
	Short: "Overlay labeled component boxes on a rendered page",
	Long: `ghostmap classifies the elements of a rendered page with an ordered rule
pipeline (layout, articles, cards, commented blocks, widgets, ad slots) and
draws a labeled, click-through box over each one, with a legend to toggle
categories and remove the overlays.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := ghost.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			c.Log.Level = logLevel
		}
		cfg = c
		logger = newLogger(cmd.ErrOrStderr(), c)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to ghostmap.yaml config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

func newLogger(w io.Writer, c *ghost.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// newAnnotator builds an Annotator with the configured sinks, falling back to
// a stdout sink when none are configured.
func newAnnotator(pageURL string) (*ghost.Annotator, error) {
	sinks, err := ghost.SinksFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	if len(sinks) == 0 {
		sinks = append(sinks, ghost.NewStdoutSink(os.Stdout))
	}
	return ghost.New(
		ghost.WithLogger(logger),
		ghost.WithSinks(sinks...),
		ghost.WithPageURL(pageURL),
	)
}
