package snapshot

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the failover waits before probing the
// primary again after marking it down.
const recoveryInterval = time.Minute

// FailoverRepository serves from a primary backend and degrades to a
// fallback when the primary errors, probing the primary again after
// recoveryInterval.
type FailoverRepository struct {
	primary   Repository
	fallback  Repository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverRepository(primary, fallback Repository, logger *zerolog.Logger) *FailoverRepository {
	return &FailoverRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary snapshot repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverRepository) shouldProbe() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverRepository) Load(ctx context.Context, slot string) ([]byte, error) {
	if !r.isDown.Load() {
		data, err := r.primary.Load(ctx, slot)
		if err == nil {
			return data, nil
		}
		r.markDown(err)
	} else if r.shouldProbe() {
		data, err := r.primary.Load(ctx, slot)
		if err == nil {
			r.isDown.Store(false)
			return data, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.Load(ctx, slot)
}

func (r *FailoverRepository) Save(ctx context.Context, slot string, data []byte) error {
	if !r.isDown.Load() {
		err := r.primary.Save(ctx, slot, data)
		if err == nil {
			return nil
		}
		r.markDown(err)
	} else if r.shouldProbe() {
		err := r.primary.Save(ctx, slot, data)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.Save(ctx, slot, data)
}
