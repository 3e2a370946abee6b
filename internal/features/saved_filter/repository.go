package saved_filter

import (
	"context"
	"errors"
	"sort"
	"sync"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SavedFilterRepository interface {
	Create(ctx context.Context, filter *SavedFilter) error
	Get(ctx context.Context, id string) (*SavedFilter, error)
	Delete(ctx context.Context, id string) error
	// FindVisible returns the user's own and all public filters of a module,
	// newest first.
	FindVisible(ctx context.Context, userID string, moduleName string) ([]SavedFilter, error)
}

type SavedFilterRepositoryImpl struct {
	collection *mongo.Collection
}

// NewSavedFilterRepository picks the store matching the configured driver.
func NewSavedFilterRepository(db *database.MongodbDB) SavedFilterRepository {
	if !db.Enabled() {
		return NewMemorySavedFilterRepository()
	}
	return &SavedFilterRepositoryImpl{
		collection: db.DB.Collection("saved_filters"),
	}
}

func (r *SavedFilterRepositoryImpl) Create(ctx context.Context, filter *SavedFilter) error {
	_, err := r.collection.InsertOne(ctx, filter)
	return err
}

func (r *SavedFilterRepositoryImpl) Get(ctx context.Context, id string) (*SavedFilter, error) {
	var filter SavedFilter
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&filter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common_models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &filter, nil
}

func (r *SavedFilterRepositoryImpl) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return common_models.ErrNotFound
	}
	return nil
}

func (r *SavedFilterRepositoryImpl) FindVisible(ctx context.Context, userID string, moduleName string) ([]SavedFilter, error) {
	query := bson.M{
		"module_name": moduleName,
		"$or": []bson.M{
			{"user_id": userID},
			{"is_public": true},
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	filters := []SavedFilter{}
	if err = cursor.All(ctx, &filters); err != nil {
		return nil, err
	}
	return filters, nil
}

type MemorySavedFilterRepository struct {
	mu      sync.RWMutex
	filters map[string]SavedFilter
}

func NewMemorySavedFilterRepository() *MemorySavedFilterRepository {
	return &MemorySavedFilterRepository{filters: make(map[string]SavedFilter)}
}

func (r *MemorySavedFilterRepository) Create(ctx context.Context, filter *SavedFilter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[filter.ID] = *filter
	return nil
}

func (r *MemorySavedFilterRepository) Get(ctx context.Context, id string) (*SavedFilter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.filters[id]
	if !ok {
		return nil, common_models.ErrNotFound
	}
	return &f, nil
}

func (r *MemorySavedFilterRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.filters[id]; !ok {
		return common_models.ErrNotFound
	}
	delete(r.filters, id)
	return nil
}

func (r *MemorySavedFilterRepository) FindVisible(ctx context.Context, userID string, moduleName string) ([]SavedFilter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []SavedFilter{}
	for _, f := range r.filters {
		if f.ModuleName == moduleName && f.VisibleTo(userID) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
