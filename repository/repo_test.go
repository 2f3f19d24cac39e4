package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Requires a reachable MongoDB; set MONGODB_TEST_URI to run.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := database.NewMongoClient(ctx, uri)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := client.Database("docqa_test_" + bson.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestFileAndResultRepos(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	files := NewFileRepo(db.Collection(database.FileCollection))
	results := NewResultRepo(db.Collection(database.ResultCollection))

	file := &types.FileRecord{Filename: "a.txt", ContentType: types.ContentTypeText, Size: 3, CreatedAt: time.Now().Unix()}
	if err := files.CreateFile(ctx, file); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if file.ID.IsZero() {
		t.Fatal("expected generated file id")
	}

	answer := "Paris"
	result := &types.ResultRecord{FileID: file.ID, Query: "capital?", Result: &answer}
	if err := results.CreateResult(ctx, result); err != nil {
		t.Fatalf("CreateResult: %v", err)
	}

	got, err := files.GetFile(ctx, file.ID)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if got.Filename != "a.txt" || got.ContentType != types.ContentTypeText {
		t.Errorf("unexpected file record: %+v", got)
	}

	list, err := results.ListResultsByFile(ctx, file.ID)
	if err != nil {
		t.Fatalf("ListResultsByFile: %v", err)
	}
	if len(list) != 1 || list[0].Result == nil || *list[0].Result != "Paris" {
		t.Errorf("unexpected results: %+v", list)
	}
}
