package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database represents the database connection
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewDatabase creates a new database connection
func NewDatabase(ctx context.Context, mongoURL, dbName string) (*Database, error) {
	// Set client options
	clientOptions := options.Client().
		ApplyURI(mongoURL).
		SetMaxPoolSize(20).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, err
	}

	db := client.Database(dbName)

	return &Database{
		Client: client,
		DB:     db,
	}, nil
}

// Close closes the database connection
func (d *Database) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

// Ping verifies the connection is still alive
func (d *Database) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, nil)
}

// CreateIndexes creates necessary indexes for optimal performance
func (d *Database) CreateIndexes(ctx context.Context) error {
	preferences := d.DB.Collection("preferences")

	// An older deploy created user_id without the unique constraint;
	// drop it so CreateMany does not conflict.
	if err := d.dropNonUniqueUserIndex(ctx, preferences); err != nil {
		return err
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "updated_at", Value: 1}},
		},
	}

	_, err := preferences.Indexes().CreateMany(ctx, indexes)
	return err
}

// dropNonUniqueUserIndex removes a conflicting user_id index if present
func (d *Database) dropNonUniqueUserIndex(ctx context.Context, collection *mongo.Collection) error {
	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var existingIndexes []bson.M
	if err = cursor.All(ctx, &existingIndexes); err != nil {
		return err
	}

	for _, index := range existingIndexes {
		if indexName, ok := index["name"].(string); ok && indexName == "user_id_1" {
			if unique, exists := index["unique"]; !exists || unique != true {
				_, err := collection.Indexes().DropOne(ctx, "user_id_1")
				if err != nil {
					return err
				}
				break
			}
		}
	}

	return nil
}
