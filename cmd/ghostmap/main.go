// Command ghostmap draws labeled bounding-box overlays over the layout blocks,
// content containers, cards, widgets and ad slots of a page.
//
// Usage:
//
//	ghostmap annotate page.html --geometry rects.json -o annotated.html
//	ghostmap live https://example.com --screenshot shot.png --hold
//	ghostmap version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
