package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
)

const (
	exitOK        = 0
	exitConfig    = 1
	exitDatastore = 2
)

// Repairs page_access documents left behind by older builds: strips null
// entries out of page lists and drops the obsolete pageName_1 index that
// blocked inserts with duplicate-null keys.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(exitConfig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mongo connect: %v\n", err)
		os.Exit(exitDatastore)
	}
	defer client.Disconnect(context.Background())

	coll := client.Database(cfg.DBName).Collection("page_access")

	res, err := coll.UpdateMany(ctx,
		bson.M{},
		bson.M{"$pull": bson.M{"page_access_list": bson.M{"$or": []bson.M{
			{"page": nil},
			{"page": ""},
		}}}},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "null entry purge: %v\n", err)
		os.Exit(exitDatastore)
	}
	fmt.Printf("purged null page entries from %d documents\n", res.ModifiedCount)

	if err := dropLegacyIndex(ctx, coll); err != nil {
		fmt.Fprintf(os.Stderr, "index drop: %v\n", err)
		os.Exit(exitDatastore)
	}

	os.Exit(exitOK)
}

func dropLegacyIndex(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().DropOne(ctx, "pageName_1")
	if err == nil {
		fmt.Println("dropped index pageName_1")
		return nil
	}
	// Absent index means an earlier run already fixed it.
	if strings.Contains(err.Error(), "IndexNotFound") || strings.Contains(err.Error(), "index not found") {
		fmt.Println("index pageName_1 not present, nothing to do")
		return nil
	}
	return err
}
