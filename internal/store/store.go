package store

import (
	"context"

	"github.com/me/trialq/pkg/model"
)

// Store persists the run history: one record per engine invocation plus the
// per-trial outcomes it assigned.
type Store interface {
	CreateRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*model.Run, int, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
