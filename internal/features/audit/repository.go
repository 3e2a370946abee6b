package audit

import (
	"context"
	"sort"
	"sync"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListFilter narrows a log listing. Empty fields match everything.
type ListFilter struct {
	Module   string
	RecordID string
	Action   common_models.AuditAction
}

type AuditRepository interface {
	Create(ctx context.Context, log common_models.AuditLog) error
	// List returns logs newest first.
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]common_models.AuditLog, error)
}

type AuditRepositoryImpl struct {
	Collection *mongo.Collection
}

// NewAuditRepository picks the store matching the configured driver.
func NewAuditRepository(mongodb *database.MongodbDB) AuditRepository {
	if !mongodb.Enabled() {
		return NewMemoryAuditRepository()
	}
	return &AuditRepositoryImpl{
		Collection: mongodb.DB.Collection("audit_logs"),
	}
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, log common_models.AuditLog) error {
	_, err := r.Collection.InsertOne(ctx, log)
	return err
}

func (r *AuditRepositoryImpl) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]common_models.AuditLog, error) {
	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"timestamp": -1})

	query := bson.M{}
	if filter.Module != "" {
		query["module"] = filter.Module
	}
	if filter.RecordID != "" {
		query["record_id"] = filter.RecordID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	logs := []common_models.AuditLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

type MemoryAuditRepository struct {
	mu   sync.RWMutex
	logs []common_models.AuditLog
}

func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

func (r *MemoryAuditRepository) Create(ctx context.Context, log common_models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *MemoryAuditRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]common_models.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []common_models.AuditLog{}
	for _, l := range r.logs {
		if filter.Module != "" && l.Module != filter.Module {
			continue
		}
		if filter.RecordID != "" && l.RecordID != filter.RecordID {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		matched = append(matched, l)
	}
	// Newest first; insertion order breaks ties
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if offset >= int64(len(matched)) {
		return []common_models.AuditLog{}, nil
	}
	end := int64(len(matched))
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}
