package snapshot

import (
	"context"
	"sync"
)

// MemoryRepository keeps slots in process memory. Used in tests and as
// the failover fallback.
type MemoryRepository struct {
	slots sync.Map
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(ctx context.Context, slot string) ([]byte, error) {
	val, ok := r.slots.Load(slot)
	if !ok {
		return nil, nil
	}
	data := val.([]byte)
	return append([]byte(nil), data...), nil
}

func (r *MemoryRepository) Save(ctx context.Context, slot string, data []byte) error {
	r.slots.Store(slot, append([]byte(nil), data...))
	return nil
}
