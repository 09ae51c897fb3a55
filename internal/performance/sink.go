package performance

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/mutker/perfmon/internal/perfdata"
)

// newSink opens nothing: the store does its own open-append-close per call.
func newSink(cfg settings) (perfdata.Appender, error) {
	if cfg.destination == "" {
		return &consoleSink{w: cfg.output}, nil
	}

	return perfdata.NewStore(cfg.destination, cfg.logger)
}

// consoleSink prints one record per line.
type consoleSink struct {
	w io.Writer
}

func (s *consoleSink) Append(_ context.Context, records []perfdata.Record) error {
	for _, rec := range records {
		if _, err := fmt.Fprintln(s.w, rec); err != nil {
			return err
		}
	}

	return nil
}
