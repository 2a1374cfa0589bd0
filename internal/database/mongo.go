package database

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB using mongo.uri.
func ConnectMongo(ctx context.Context) (*mongo.Client, error) {
	uri := viper.GetString("mongo.uri")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// TrafficCollection returns the collection hourly traffic buckets are written to.
func TrafficCollection(client *mongo.Client) *mongo.Collection {
	return client.Database(viper.GetString("mongo.database")).Collection("traffic_logs")
}
