package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionCounters = "counters"

// CounterRepository implements the durable sequence counter on a counters
// collection, one document per sequence name.
type CounterRepository struct {
	col *mongo.Collection
}

func NewCounterRepository(db *mongo.Database) *CounterRepository {
	return &CounterRepository{col: db.Collection(collectionCounters)}
}

// IncrementAndGet atomically increments the named sequence via an upsert
// and returns the new value. Because the increment is a single atomic
// operation rather than read-modify-write, concurrent callers always see
// strictly increasing values. When ctx carries a session the increment
// joins the transaction and rolls back with it.
func (r *CounterRepository) IncrementAndGet(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("increment sequence %q: %w", name, err)
	}
	return doc.Seq, nil
}
