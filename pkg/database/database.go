package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

const defaultMongoConnectionString = "mongodb://localhost:27017/"
const defaultMongoDatabase = "ontime"

// ConnectMongoDB connects and pings the server. Empty arguments fall back to
// a local default deployment.
func ConnectMongoDB(ctx context.Context, connectionString string, dbName string) (*MongoInstance, error) {
	if connectionString == "" {
		connectionString = defaultMongoConnectionString
	}
	if dbName == "" {
		dbName = defaultMongoDatabase
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Debug().Str("database", dbName).Msg("Connected to MongoDB")

	return &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (m *MongoInstance) GetCollection(collectionName string) *mongo.Collection {
	return m.Database.Collection(collectionName)
}

func (m *MongoInstance) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
