package funnel

import (
	"context"
	"sync"

	common_models "go-crm-funnel/internal/common/models"
)

// FunnelRepository persists leads and deals. FindAll returns records in
// creation order.
type FunnelRepository interface {
	Create(ctx context.Context, rec *FunnelRecord) error
	FindByID(ctx context.Context, ft FunnelType, id string) (*FunnelRecord, error)
	FindAll(ctx context.Context, ft FunnelType) ([]FunnelRecord, error)
	// Update stores rec only if the stored version equals expectedVersion and
	// bumps rec.Version on success.
	Update(ctx context.Context, rec *FunnelRecord, expectedVersion int64) error
}

// MemoryFunnelRepository keeps records in process memory.
type MemoryFunnelRepository struct {
	mu      sync.RWMutex
	records map[string]FunnelRecord
	order   []string
}

func NewMemoryFunnelRepository() *MemoryFunnelRepository {
	return &MemoryFunnelRepository{records: make(map[string]FunnelRecord)}
}

func key(ft FunnelType, id string) string {
	return string(ft) + "/" + id
}

func (r *MemoryFunnelRepository) Create(ctx context.Context, rec *FunnelRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(rec.FunnelType, rec.ID)
	if _, exists := r.records[k]; exists {
		return common_models.ErrVersionConflict
	}
	r.records[k] = *rec
	r.order = append(r.order, k)
	return nil
}

func (r *MemoryFunnelRepository) FindByID(ctx context.Context, ft FunnelType, id string) (*FunnelRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[key(ft, id)]
	if !ok {
		return nil, common_models.ErrNotFound
	}
	return &rec, nil
}

func (r *MemoryFunnelRepository) FindAll(ctx context.Context, ft FunnelType) ([]FunnelRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []FunnelRecord{}
	for _, k := range r.order {
		if rec := r.records[k]; rec.FunnelType == ft {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *MemoryFunnelRepository) Update(ctx context.Context, rec *FunnelRecord, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(rec.FunnelType, rec.ID)
	stored, ok := r.records[k]
	if !ok {
		return common_models.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return common_models.ErrVersionConflict
	}
	rec.Version = expectedVersion + 1
	r.records[k] = *rec
	return nil
}
