package funnel

import (
	"context"
	"errors"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoFunnelRepository struct {
	collection *mongo.Collection
}

func NewMongoFunnelRepository(db *database.MongodbDB) *MongoFunnelRepository {
	return &MongoFunnelRepository{
		collection: db.DB.Collection("funnel_records"),
	}
}

// EnsureIndexes creates the list index used by FindAll.
func (r *MongoFunnelRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "funnel_type", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}

func (r *MongoFunnelRepository) Create(ctx context.Context, rec *FunnelRecord) error {
	_, err := r.collection.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return common_models.ErrVersionConflict
	}
	return err
}

func (r *MongoFunnelRepository) FindByID(ctx context.Context, ft FunnelType, id string) (*FunnelRecord, error) {
	var rec FunnelRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "funnel_type": ft}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common_models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *MongoFunnelRepository) FindAll(ctx context.Context, ft FunnelType) ([]FunnelRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"funnel_type": ft}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []FunnelRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *MongoFunnelRepository) Update(ctx context.Context, rec *FunnelRecord, expectedVersion int64) error {
	next := *rec
	next.Version = expectedVersion + 1

	res, err := r.collection.ReplaceOne(ctx, bson.M{
		"_id":         rec.ID,
		"funnel_type": rec.FunnelType,
		"version":     expectedVersion,
	}, next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, rec.FunnelType, rec.ID); err != nil {
			return err
		}
		return common_models.ErrVersionConflict
	}
	rec.Version = next.Version
	return nil
}

// NewFunnelRepository picks the store matching the configured driver.
func NewFunnelRepository(db *database.MongodbDB) FunnelRepository {
	if db.Enabled() {
		return NewMongoFunnelRepository(db)
	}
	return NewMemoryFunnelRepository()
}
