package main

import (
	"fmt"
	"os"

	"github.com/hazyhaar/ghostmap/ghost"
	"github.com/spf13/cobra"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [file.html]",
	Short: "Annotate a saved HTML document",
	Long: `Classifies a saved HTML document and writes it back with the overlay stage
and legend appended. Element rectangles come from a geometry table recorded by
"ghostmap live --geometry-out"; without one every rectangle is empty, so the
run only reports classifications.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().String("geometry", "", "geometry table (JSON) recorded from the live page")
	annotateCmd.Flags().StringP("output", "o", "", "write the annotated document to this file")
	annotateCmd.Flags().String("page-url", "", "page URL recorded in the report")
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	geomPath, _ := cmd.Flags().GetString("geometry")
	outPath, _ := cmd.Flags().GetString("output")
	pageURL, _ := cmd.Flags().GetString("page-url")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	doc, err := ghost.ParseDocument(f)
	f.Close()
	if err != nil {
		return err
	}

	var geom ghost.GeometrySource = new(ghost.GeometryTable)
	if geomPath == "" {
		logger.Warn("ghostmap: no geometry table, rectangles are empty and no overlay will be drawn",
			"file", args[0])
	} else {
		t, err := ghost.LoadGeometry(geomPath)
		if err != nil {
			return err
		}
		geom = t
	}

	a, err := newAnnotator(pageURL)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.Annotate(cmd.Context(), doc, geom); err != nil {
		return err
	}

	if outPath == "" {
		return nil
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := doc.Render(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
