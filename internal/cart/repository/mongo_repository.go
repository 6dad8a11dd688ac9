package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/cart/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAdapter persists cart snapshots in a shared collection. Used when
// several frontend nodes serve the same visitors. The cart itself is stored
// as a JSON snapshot so decimal amounts round-trip exactly.
type MongoAdapter struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type cartDocument struct {
	OwnerID   string    `bson:"owner_id"`
	Snapshot  string    `bson:"snapshot"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoAdapter, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoAdapter{
		client:     client,
		collection: client.Database(dbName).Collection("carts"),
	}, nil
}

func (a *MongoAdapter) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (a *MongoAdapter) Load(ctx context.Context, ownerID string) (*domain.Cart, error) {
	var doc cartDocument

	filter := bson.M{"owner_id": ownerID}
	err := a.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(doc.Snapshot), &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart snapshot: %w", err)
	}
	return &cart, nil
}

func (a *MongoAdapter) Save(ctx context.Context, cart *domain.Cart) error {
	snapshot, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}

	filter := bson.M{"owner_id": cart.OwnerID}
	update := bson.M{"$set": cartDocument{
		OwnerID:   cart.OwnerID,
		Snapshot:  string(snapshot),
		UpdatedAt: time.Now().UTC(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := a.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (a *MongoAdapter) Delete(ctx context.Context, ownerID string) error {
	result, err := a.collection.DeleteOne(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (a *MongoAdapter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.client.Disconnect(ctx)
}
