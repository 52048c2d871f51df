package kvstore

import (
	"context"
	"errors"

	"github.com/ontime-app/ontime/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const storageCollection = "storage"

type storageDocument struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

type MongoStore struct {
	instance   *database.MongoInstance
	collection *mongo.Collection
}

func OpenMongoStore(ctx context.Context, connectionString string, dbName string) (*MongoStore, error) {
	instance, err := database.ConnectMongoDB(ctx, connectionString, dbName)
	if err != nil {
		return nil, err
	}

	return &MongoStore{
		instance:   instance,
		collection: instance.GetCollection(storageCollection),
	}, nil
}

func (m *MongoStore) Get(ctx context.Context, key string) (string, bool, error) {
	var document storageDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&document)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return document.Value, true, nil
}

func (m *MongoStore) Set(ctx context.Context, key string, value string) error {
	opts := options.Replace().SetUpsert(true)
	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": key}, storageDocument{Key: key, Value: value}, opts)
	return err
}

func (m *MongoStore) Remove(ctx context.Context, key string) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (m *MongoStore) RemoveAll(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := m.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}})
	return err
}

func (m *MongoStore) ListKeys(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	keys := []string{}
	for cursor.Next(ctx) {
		var document storageDocument
		if err := cursor.Decode(&document); err != nil {
			return nil, err
		}
		keys = append(keys, document.Key)
	}

	return keys, cursor.Err()
}

func (m *MongoStore) Close() error {
	return m.instance.Disconnect(context.Background())
}
