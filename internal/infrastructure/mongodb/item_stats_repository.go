package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/transfers/internal/domain"
)

// DefaultItemStatsCollection holds one document per order item, keyed by item key.
const DefaultItemStatsCollection = "order_item_stats"

// OperationMetrics records MongoDB operation outcomes
type OperationMetrics interface {
	RecordMongoDBOperation(collection, operation string, success bool, duration time.Duration)
}

type itemStatDocument struct {
	Key  string          `bson:"_id"`
	Stat domain.ItemStat `bson:",inline"`
}

// ItemStatsRepository reads shipped and received quantities from the item stats projection
type ItemStatsRepository struct {
	collection *mongo.Collection
	metrics    OperationMetrics
}

// NewItemStatsRepository creates a new ItemStatsRepository. metrics may be nil.
func NewItemStatsRepository(db *mongo.Database, collection string, metrics OperationMetrics) *ItemStatsRepository {
	if collection == "" {
		collection = DefaultItemStatsCollection
	}
	return &ItemStatsRepository{
		collection: db.Collection(collection),
		metrics:    metrics,
	}
}

// FetchItemStats returns the statistics of the given item keys. Keys without a document are absent.
func (r *ItemStatsRepository) FetchItemStats(ctx context.Context, keys []string) (domain.ItemStats, error) {
	stats := make(domain.ItemStats, len(keys))
	if len(keys) == 0 {
		return stats, nil
	}

	start := time.Now()
	err := r.find(ctx, keys, stats)
	if r.metrics != nil {
		r.metrics.RecordMongoDBOperation(r.collection.Name(), "find", err == nil, time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *ItemStatsRepository) find(ctx context.Context, keys []string, stats domain.ItemStats) error {
	filter := bson.M{"_id": bson.M{"$in": keys}}
	opts := options.Find().SetProjection(bson.M{"shippedQty": 1, "receivedQty": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("failed to find item stats: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc itemStatDocument
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode item stats: %w", err)
		}
		stats[doc.Key] = doc.Stat
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("failed to iterate item stats: %w", err)
	}
	return nil
}

// Upsert replaces the statistics of one item.
func (r *ItemStatsRepository) Upsert(ctx context.Context, key string, stat domain.ItemStat) error {
	start := time.Now()
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		itemStatDocument{Key: key, Stat: stat},
		options.Replace().SetUpsert(true),
	)
	if r.metrics != nil {
		r.metrics.RecordMongoDBOperation(r.collection.Name(), "upsert", err == nil, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("failed to upsert item stats: %w", err)
	}
	return nil
}
