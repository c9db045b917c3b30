//go:build !sqlite

package stats

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/boristopalov/batonpass/pkg/core"
)

func openSQLite(_ context.Context, _ string, _ *zap.Logger) (core.StatsReporter, error) {
	return nil, fmt.Errorf("sqlite backend unavailable in this build; rebuild with -tags sqlite")
}
