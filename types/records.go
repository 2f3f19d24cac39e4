package types

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// FileRecord is the persisted metadata of an uploaded file.
type FileRecord struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Filename    string        `json:"filename" bson:"filename"`
	ContentType string        `json:"content_type" bson:"content_type"`
	Size        int64         `json:"size" bson:"size"`
	CreatedAt   int64         `json:"created_at" bson:"created_at"`
}

// ResultRecord stores the answer produced for one upload.
type ResultRecord struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	FileID    bson.ObjectID `json:"file_id" bson:"file_id"`
	Query     string        `json:"query" bson:"query"`
	Result    *string       `json:"result" bson:"result"`
	CreatedAt int64         `json:"created_at" bson:"created_at"`
}
