package main

import (
	"fmt"
	"os"

	"github.com/hazyhaar/ghostmap/ghost"
	"github.com/spf13/cobra"
)

var liveCmd = &cobra.Command{
	Use:   "live [url]",
	Short: "Annotate a page in Chrome",
	Long: `Opens the page in a stealth Chrome tab, measures every candidate element in
the rendered layout and injects the overlays and an interactive legend into the
page. With --hold the page stays open until the legend's remove button is
pressed or the process is interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runLive,
}

func init() {
	liveCmd.Flags().String("screenshot", "", "write a full-page PNG screenshot of the annotated page")
	liveCmd.Flags().String("html", "", "write the annotated DOM snapshot to this file")
	liveCmd.Flags().String("geometry-out", "", "write the measured geometry table (JSON)")
	liveCmd.Flags().Bool("hold", false, "keep the page open until overlays are removed")
	rootCmd.AddCommand(liveCmd)
}

func runLive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	shotPath, _ := cmd.Flags().GetString("screenshot")
	htmlPath, _ := cmd.Flags().GetString("html")
	geomPath, _ := cmd.Flags().GetString("geometry-out")
	hold, _ := cmd.Flags().GetBool("hold")

	a, err := newAnnotator(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := ghost.NewSession(ctx, cfg, a)
	if err != nil {
		return err
	}
	defer sess.Close()

	run, err := sess.Annotate(ctx, args[0])
	if err != nil {
		return err
	}
	defer run.Close()

	if shotPath != "" {
		data, err := run.Screenshot(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(shotPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", shotPath, err)
		}
		logger.Info("ghostmap: screenshot written", "path", shotPath, "bytes", len(data))
	}
	if geomPath != "" {
		if err := run.Geometry.Save(geomPath); err != nil {
			return err
		}
	}
	if htmlPath != "" {
		out, err := os.Create(htmlPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", htmlPath, err)
		}
		if err := run.Document.Render(out); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
	}

	if hold {
		logger.Info("ghostmap: holding page open", "url", args[0])
		select {
		case <-ctx.Done():
		case <-run.Removed():
			logger.Info("ghostmap: overlays removed")
		}
	}
	return nil
}
