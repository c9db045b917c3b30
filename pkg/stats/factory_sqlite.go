//go:build sqlite

package stats

import (
	"context"

	"go.uber.org/zap"

	"github.com/boristopalov/batonpass/pkg/core"
)

func openSQLite(ctx context.Context, path string, log *zap.Logger) (core.StatsReporter, error) {
	s := NewSQLite(path, log)
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
