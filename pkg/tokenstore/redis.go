package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "mapofpi:session:token"

// Redis stores the record as JSON under a single key.
type Redis struct {
	client redis.Cmdable
	key    string
	now    func() time.Time
}

func NewRedis(client redis.Cmdable, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key, now: time.Now}
}

// Save writes the record. Records with a known expiry get a matching TTL.
func (r *Redis) Save(ctx context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}

	ttl := rec.TTL(r.now())
	if ttl < 0 {
		return r.Delete(ctx)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context) (Record, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, errors.Join(ErrCorruptedRecord, err)
	}
	if rec.Token == "" || rec.Expired(r.now()) {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *Redis) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}
