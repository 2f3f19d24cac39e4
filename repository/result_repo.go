package repository

import (
	"context"
	"fmt"

	"github.com/tieubaoca/docqa-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type ResultRepo interface {
	CreateResult(ctx context.Context, result *types.ResultRecord) error
	ListResultsByFile(ctx context.Context, fileID bson.ObjectID) ([]*types.ResultRecord, error)
}

type resultRepo struct {
	collection *mongo.Collection
}

func NewResultRepo(collection *mongo.Collection) ResultRepo {
	return &resultRepo{
		collection: collection,
	}
}

func (r *resultRepo) CreateResult(ctx context.Context, result *types.ResultRecord) error {
	res, err := r.collection.InsertOne(ctx, result)
	if err != nil {
		return err
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	result.ID = id
	return nil
}

func (r *resultRepo) ListResultsByFile(ctx context.Context, fileID bson.ObjectID) ([]*types.ResultRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"file_id": fileID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []*types.ResultRecord
	for cursor.Next(ctx) {
		var result types.ResultRecord
		if err := cursor.Decode(&result); err != nil {
			return nil, err
		}
		results = append(results, &result)
	}
	return results, cursor.Err()
}
