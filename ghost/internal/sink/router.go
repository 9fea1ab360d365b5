package sink

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"go.uber.org/multierr"
)

// Router fans out reports to all configured sinks. One sink failing does not
// block the others; every error is logged and all are returned combined.
type Router struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewRouter creates a fan-out router delivering to all sinks.
func NewRouter(logger *slog.Logger, sinks ...Sink) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{sinks: sinks, logger: logger}
}

// Len is the number of sinks.
func (r *Router) Len() int { return len(r.sinks) }

func (r *Router) Send(ctx context.Context, rep annotation.Report) error {
	var err error
	for _, s := range r.sinks {
		if e := s.Send(ctx, rep); e != nil {
			r.logger.Warn("sink: send report failed", "error", e)
			err = multierr.Append(err, e)
		}
	}
	return err
}

func (r *Router) Close() error {
	var err error
	for _, s := range r.sinks {
		err = multierr.Append(err, s.Close())
	}
	return err
}
