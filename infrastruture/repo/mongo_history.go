package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultQueryTimeout = 2 * time.Second

var _ i.HistoryRepo = &MongoHistoryRepo{}

// MongoHistoryRepo handles the persistence of finished maze runs in MongoDB.
type MongoHistoryRepo struct {
	collection *mongo.Collection
}

// NewMongoHistoryRepo creates a new MongoHistoryRepo with the given MongoDB client, database name, and collection name.
func NewMongoHistoryRepo(client *mongo.Client, dbName, collectionName string) *MongoHistoryRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoHistoryRepo{
		collection: collection,
	}
}

// EnsureIndexes creates the index backing Recent.
func (m *MongoHistoryRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "finishedAt", Value: -1}},
	})
	return err
}

// Save inserts or replaces a result, keyed by its ID.
func (m *MongoHistoryRepo) Save(ctx context.Context, result *game.Result) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": result.ID}
	update := bson.M{
		"$set": bson.M{
			"sessionId":    result.SessionID,
			"playerName":   result.PlayerName,
			"width":        result.Width,
			"height":       result.Height,
			"algorithm":    result.Algorithm,
			"moves":        result.Moves,
			"optimalMoves": result.OptimalMoves,
			"score":        result.Score,
			"durationMs":   result.DurationMs,
			"finishedAt":   result.FinishedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("saving result %s: %w", result.ID, err)
	}
	return nil
}

// ByID retrieves a result by its ID.
func (m *MongoHistoryRepo) ByID(ctx context.Context, id uuid.UUID) (*game.Result, error) {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	var result game.Result
	if err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, i.ErrResultNotFound
		}
		return nil, fmt.Errorf("finding result %s: %w", id, err)
	}
	return &result, nil
}

// Recent returns up to limit results, most recently finished first.
func (m *MongoHistoryRepo) Recent(ctx context.Context, limit int) ([]*game.Result, error) {
	if limit <= 0 {
		return []*game.Result{}, nil
	}

	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "finishedAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer cursor.Close(ctx)

	results := make([]*game.Result, 0, limit)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decoding results: %w", err)
	}
	return results, nil
}

// withDefaultTimeout bounds ctx by defaultQueryTimeout unless it already has a deadline.
func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}
