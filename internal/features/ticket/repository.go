package ticket

import (
	"context"
	"fmt"
	"sync"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/database"
)

// TicketRepository defines the interface for ticket data operations
type TicketRepository interface {
	Create(ctx context.Context, ticket *Ticket) error
	FindByID(ctx context.Context, id string) (*Ticket, error)
	// FindAll returns tickets in creation order.
	FindAll(ctx context.Context) ([]Ticket, error)
	// Update stores t only if the stored version equals expectedVersion and
	// bumps t.Version on success.
	Update(ctx context.Context, t *Ticket, expectedVersion int64) error
	GetNextTicketNumber(ctx context.Context) (string, error)
}

func formatTicketNumber(n int64) string {
	return fmt.Sprintf("TKT-%06d", n)
}

// NewTicketRepository picks the store matching the configured driver.
func NewTicketRepository(db *database.MongodbDB) TicketRepository {
	if db.Enabled() {
		return NewMongoTicketRepository(db)
	}
	return NewMemoryTicketRepository()
}

// MemoryTicketRepository keeps tickets in process memory.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]Ticket
	order   []string
	counter int64
}

func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{tickets: make(map[string]Ticket)}
}

func (r *MemoryTicketRepository) Create(ctx context.Context, t *Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tickets[t.ID]; exists {
		return common_models.ErrVersionConflict
	}
	r.tickets[t.ID] = *t
	r.order = append(r.order, t.ID)
	return nil
}

func (r *MemoryTicketRepository) FindByID(ctx context.Context, id string) (*Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tickets[id]
	if !ok {
		return nil, common_models.ErrNotFound
	}
	return &t, nil
}

func (r *MemoryTicketRepository) FindAll(ctx context.Context) ([]Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Ticket, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tickets[id])
	}
	return out, nil
}

func (r *MemoryTicketRepository) Update(ctx context.Context, t *Ticket, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tickets[t.ID]
	if !ok {
		return common_models.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return common_models.ErrVersionConflict
	}
	t.Version = expectedVersion + 1
	r.tickets[t.ID] = *t
	return nil
}

func (r *MemoryTicketRepository) GetNextTicketNumber(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return formatTicketNumber(r.counter), nil
}
