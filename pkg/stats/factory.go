package stats

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/boristopalov/batonpass/pkg/core"
)

// Options selects which sinks Open builds.
type Options struct {
	CSVPath    string
	SQLitePath string
	Log        bool
}

// Open builds the configured sinks plus the in-memory aggregate, which is
// always present and returned separately for reporting.
func Open(ctx context.Context, opts Options, log *zap.Logger) (core.StatsReporter, *Memory, error) {
	if log == nil {
		log = zap.NewNop()
	}
	mem := NewMemory()
	sinks := Multi{mem}

	if opts.Log {
		sinks = append(sinks, NewLog(log.Named("stats")))
	}
	if opts.CSVPath != "" {
		c, err := NewCSVFile(opts.CSVPath, log)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, c)
	}
	if opts.SQLitePath != "" {
		s, err := openSQLite(ctx, opts.SQLitePath, log)
		if err != nil {
			_ = Close(sinks)
			return nil, nil, fmt.Errorf("open sqlite stats: %w", err)
		}
		sinks = append(sinks, s)
	}
	return sinks, mem, nil
}

// Close closes every sink that holds resources.
func Close(r core.StatsReporter) error {
	m, ok := r.(Multi)
	if !ok {
		return CloseIfSupported(r)
	}
	var first error
	for _, s := range m {
		if err := CloseIfSupported(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}
