package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/harvestlane/veggiebox-backend/pkg/config"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
)

// Collection names used across the application.
const (
	CollectionOrders      = "orders"
	CollectionBoxes       = "boxes"
	CollectionSettings    = "settings"
	CollectionSubscribers = "subscribers"
	CollectionTodos       = "todos"
)

// Client wraps the shared mongo connection.
type Client struct {
	conn *mongo.Client
	db   *mongo.Database
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New boots a mongo client using the provided configuration and verifies
// connectivity before handing the client back.
func New(ctx context.Context, cfg config.MongoConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)

	conn, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("opening mongo connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := conn.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = conn.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "mongo connection established")
	}

	return &Client{conn: conn, db: conn.Database(cfg.Database)}, nil
}

// Collection returns a handle scoped to the configured database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Database returns the underlying database handle.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx, readpref.Primary())
}

// Close shuts down the pooled connections.
func (c *Client) Close(ctx context.Context) error {
	return c.conn.Disconnect(ctx)
}
