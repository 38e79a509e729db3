package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/map-of-pi/mapofpi/pkg/retry"
)

// Connect opens a client and pings the server, retrying up to
// cfg.RetryAttempts times with cfg.RetryInterval between attempts.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	opts := options.Client().
		ApplyURI(cfg.ConnectionURL).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime)

	policy := retry.Policy{
		MaxRetries: max(cfg.RetryAttempts-1, 0),
		Backoff:    retry.Fixed{Interval: cfg.RetryInterval},
	}

	var client *mongo.Client
	err := policy.Do(ctx, func(ctx context.Context, _ int) error {
		c, err := mongo.Connect(opts)
		if err != nil {
			return err
		}
		if err := c.Ping(ctx, nil); err != nil {
			_ = c.Disconnect(context.WithoutCancel(ctx))
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToConnect, err)
	}

	return client, nil
}

// LogCollection returns the collection server logs are written to.
func LogCollection(client *mongo.Client, cfg Config) *mongo.Collection {
	name := cfg.LogCollection
	if name == "" {
		name = "serverLogs"
	}
	return client.Database(cfg.Database).Collection(name)
}
