package governance

import (
	"context"

	"github.com/xraph/votemax/id"
)

type Store interface {
	GetSettings(ctx context.Context) (*Settings, error)
	GetActiveRound(ctx context.Context) (*Round, error)
	GetRound(ctx context.Context, roundID id.RoundID) (*Round, error)
	ListRounds(ctx context.Context, opts ListOpts) ([]*Round, error)
}

// ListOpts filters round history. Results are ordered by round number,
// newest first.
type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
