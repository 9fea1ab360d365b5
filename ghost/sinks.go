package ghost

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/config"
	"github.com/hazyhaar/ghostmap/ghost/internal/sink"
	"go.uber.org/multierr"
)

// Sink receives one report per run.
type Sink = sink.Sink

// ReportFunc is called for each report.
type ReportFunc = sink.ReportFunc

// NewStdoutSink creates a stdout JSON-lines sink.
func NewStdoutSink(w io.Writer) Sink { return sink.NewStdout(w) }

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger) Sink {
	return sink.NewWebhook(url, sink.WithWebhookLogger(logger))
}

// NewCallbackSink creates an in-process sink.
func NewCallbackSink(fn func(ctx context.Context, rep annotation.Report) error) Sink {
	return sink.NewCallback(fn)
}

// NewSQLiteSink opens a run history database.
func NewSQLiteSink(path string) (*sink.SQLite, error) { return sink.OpenSQLite(path) }

// SinksFromConfig builds the sinks listed in the configuration. On error the
// sinks opened so far are closed.
func SinksFromConfig(cfg *config.Config, logger *slog.Logger) ([]Sink, error) {
	var out []Sink
	for i, sc := range cfg.Sinks {
		switch sc.Type {
		case "stdout":
			out = append(out, NewStdoutSink(os.Stdout))
		case "webhook":
			out = append(out, NewWebhookSink(sc.URL, logger))
		case "sqlite":
			s, err := sink.OpenSQLite(sc.Path)
			if err != nil {
				return nil, multierr.Append(fmt.Errorf("ghost: sinks[%d]: %w", i, err), closeAll(out))
			}
			out = append(out, s)
		default:
			return nil, multierr.Append(fmt.Errorf("ghost: sinks[%d]: unknown type %q", i, sc.Type), closeAll(out))
		}
	}
	return out, nil
}

func closeAll(sinks []Sink) error {
	var err error
	for _, s := range sinks {
		err = multierr.Append(err, s.Close())
	}
	return err
}
