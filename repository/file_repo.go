package repository

import (
	"context"
	"fmt"

	"github.com/tieubaoca/docqa-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// FileRepo is append-only: records are inserted once and never changed.
type FileRepo interface {
	CreateFile(ctx context.Context, file *types.FileRecord) error
	GetFile(ctx context.Context, id bson.ObjectID) (*types.FileRecord, error)
}

type fileRepo struct {
	collection *mongo.Collection
}

func NewFileRepo(collection *mongo.Collection) FileRepo {
	return &fileRepo{
		collection: collection,
	}
}

// CreateFile inserts file and sets file.ID to the generated identifier.
func (r *fileRepo) CreateFile(ctx context.Context, file *types.FileRecord) error {
	res, err := r.collection.InsertOne(ctx, file)
	if err != nil {
		return err
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	file.ID = id
	return nil
}

func (r *fileRepo) GetFile(ctx context.Context, id bson.ObjectID) (*types.FileRecord, error) {
	file := &types.FileRecord{}
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(file); err != nil {
		return nil, err
	}
	return file, nil
}
