// pantry/mongo/db.go
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// PoolConfig holds connection pool settings for MongoDB.
type PoolConfig struct {
	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize uint64

	// MinPoolSize is the minimum number of connections to keep open.
	MinPoolSize uint64

	// MaxConnIdleTime is how long a connection can be idle before being closed.
	MaxConnIdleTime time.Duration

	// ConnectTimeout bounds dialing and the initial ping. Default: 10 seconds
	ConnectTimeout time.Duration

	// ServerSelectionTimeout is the timeout for selecting a server.
	ServerSelectionTimeout time.Duration
}

// DefaultPoolConfig returns the pool used by the API server.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxPoolSize:            100,
		MinPoolSize:            10,
		MaxConnIdleTime:        5 * time.Minute,
		ConnectTimeout:         mongoConnectTimeout,
		ServerSelectionTimeout: 10 * time.Second,
	}
}

// Connect opens a Mongo connection with the given pool settings and pings
// the primary before returning. The caller must disconnect the client.
func Connect(ctx context.Context, uri string, pool PoolConfig) (*mongo.Client, error) {
	connectTimeout := pool.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = mongoConnectTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri)

	if pool.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(pool.MaxPoolSize)
	}
	if pool.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(pool.MinPoolSize)
	}
	if pool.MaxConnIdleTime > 0 {
		clientOpts.SetMaxConnIdleTime(pool.MaxConnIdleTime)
	}
	clientOpts.SetConnectTimeout(connectTimeout)
	if pool.ServerSelectionTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(pool.ServerSelectionTimeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}

// Pinger returns a health check that pings the primary.
func Pinger(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}
