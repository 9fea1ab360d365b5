package sink

import (
	"context"

	"github.com/hazyhaar/ghostmap/ghost/annotation"
)

// ReportFunc is called for each report.
type ReportFunc func(ctx context.Context, rep annotation.Report) error

// Callback delivers reports in-process with no serialisation.
type Callback struct {
	fn ReportFunc
}

// NewCallback creates a Callback sink. fn may be nil.
func NewCallback(fn ReportFunc) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) Send(ctx context.Context, rep annotation.Report) error {
	if c.fn != nil {
		return c.fn(ctx, rep)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
