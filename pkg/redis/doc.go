// Package redis connects to Redis for the redis-backed token store.
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL:  "redis://localhost:6379/0",
//		RetryAttempts:  3,
//		RetryInterval:  time.Second,
//		ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	store := tokenstore.NewRedis(client, "")
//
// Errors wrap the go-redis cause with errors.Join, so both the sentinel of
// this package and the driver error can be matched.
package redis
