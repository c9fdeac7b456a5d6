package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxBatchOps caps a single BulkWrite call; larger batches are split.
const maxBatchOps = 500

// Op is one staged document update, applied during Commit.
type Op struct {
	Collection string
	ID         string
	Set        bson.M
}

// BatchWriter is the unit-of-work contract: every op staged for a call is
// applied on Commit or, if the write fails, none of the call's user-visible
// updates land partially inside one collection batch. Writes touching
// several collections are committed per collection in staging order.
type BatchWriter interface {
	Commit(ctx context.Context, ops []Op) error
}

type mongoBatchWriter struct {
	db *MongodbDB
}

func NewBatchWriter(db *MongodbDB) BatchWriter {
	return &mongoBatchWriter{db: db}
}

func (w *mongoBatchWriter) Commit(ctx context.Context, ops []Op) error {
	for _, group := range GroupByCollection(ops) {
		collection := w.db.DB.Collection(group.Collection)
		for _, chunk := range ChunkOps(group.Ops, maxBatchOps) {
			writes := make([]mongo.WriteModel, 0, len(chunk))
			for _, op := range chunk {
				writes = append(writes, mongo.NewUpdateOneModel().
					SetFilter(bson.M{"_id": op.ID}).
					SetUpdate(bson.M{"$set": op.Set}))
			}
			if _, err := collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
				return fmt.Errorf("bulk write to %s: %w", group.Collection, err)
			}
		}
	}
	return nil
}

// CollectionOps holds the staged ops of one collection, in staging order.
type CollectionOps struct {
	Collection string
	Ops        []Op
}

// GroupByCollection splits staged ops per collection, preserving both the
// order collections were first seen and the order of ops within each.
func GroupByCollection(ops []Op) []CollectionOps {
	var groups []CollectionOps
	index := make(map[string]int)
	for _, op := range ops {
		i, ok := index[op.Collection]
		if !ok {
			i = len(groups)
			index[op.Collection] = i
			groups = append(groups, CollectionOps{Collection: op.Collection})
		}
		groups[i].Ops = append(groups[i].Ops, op)
	}
	return groups
}

// ChunkOps splits ops into slices of at most size elements.
func ChunkOps(ops []Op, size int) [][]Op {
	if len(ops) == 0 {
		return nil
	}
	var chunks [][]Op
	for size < len(ops) {
		chunks = append(chunks, ops[:size])
		ops = ops[size:]
	}
	return append(chunks, ops)
}
