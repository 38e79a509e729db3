package tokenstore

import (
	"github.com/redis/go-redis/v9"
)

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

type Config struct {
	Driver   string `env:"TOKEN_STORE" envDefault:"file"`
	Path     string `env:"TOKEN_STORE_PATH"`
	RedisKey string `env:"TOKEN_STORE_KEY" envDefault:"mapofpi:session:token"`
}

// Open builds the store selected by cfg.Driver. The redis client is only
// required for the redis driver.
func Open(cfg Config, client redis.Cmdable) (Store, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		return NewFile(cfg.Path)
	case DriverRedis:
		if client == nil {
			return nil, ErrRedisRequired
		}
		return NewRedis(client, cfg.RedisKey), nil
	default:
		return nil, ErrUnknownDriver
	}
}
