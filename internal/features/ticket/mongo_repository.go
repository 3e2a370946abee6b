package ticket

import (
	"context"
	"errors"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TicketRepositoryImpl stores tickets in MongoDB. Ticket numbers come from a
// shared counter document so concurrent creators never collide.
type TicketRepositoryImpl struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

func NewMongoTicketRepository(db *database.MongodbDB) *TicketRepositoryImpl {
	return &TicketRepositoryImpl{
		collection: db.DB.Collection("tickets"),
		counters:   db.DB.Collection("counters"),
	}
}

// EnsureIndexes creates the unique ticket number index.
func (r *TicketRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ticket_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, t *Ticket) error {
	_, err := r.collection.InsertOne(ctx, t)
	if mongo.IsDuplicateKeyError(err) {
		return common_models.ErrVersionConflict
	}
	return err
}

func (r *TicketRepositoryImpl) FindByID(ctx context.Context, id string) (*Ticket, error) {
	var t Ticket
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common_models.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepositoryImpl) FindAll(ctx context.Context) ([]Ticket, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "ticket_number", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tickets := []Ticket{}
	if err = cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *TicketRepositoryImpl) Update(ctx context.Context, t *Ticket, expectedVersion int64) error {
	next := *t
	next.Version = expectedVersion + 1

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": t.ID, "version": expectedVersion}, next)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, t.ID); err != nil {
			return err
		}
		return common_models.ErrVersionConflict
	}
	t.Version = next.Version
	return nil
}

// GetNextTicketNumber generates the next ticket number
func (r *TicketRepositoryImpl) GetNextTicketNumber(ctx context.Context) (string, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "ticket_number"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return "", err
	}
	return formatTicketNumber(counter.Seq), nil
}
