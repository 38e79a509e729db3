package tokenstore

import "errors"

var (
	ErrNotFound        = errors.New("no stored token")
	ErrEmptyToken      = errors.New("empty token")
	ErrUnknownDriver   = errors.New("unknown token store driver")
	ErrRedisRequired   = errors.New("redis token store requires a redis client")
	ErrCorruptedRecord = errors.New("corrupted token record")
)
