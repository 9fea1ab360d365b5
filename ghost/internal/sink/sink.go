// Package sink delivers per-run annotation reports to output backends
// (stdout JSON lines, webhook, in-process callback, SQLite history).
package sink

import (
	"context"

	"github.com/hazyhaar/ghostmap/ghost/annotation"
)

// Sink is the output interface for run reports.
type Sink interface {
	Send(ctx context.Context, rep annotation.Report) error
	Close() error
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
