package fee

import "context"

type Store interface {
	GetFeePolicy(ctx context.Context) (*Policy, error)
}
