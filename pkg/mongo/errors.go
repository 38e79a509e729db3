package mongo

import "errors"

var (
	ErrNotConfigured     = errors.New("mongodb connection URL is not configured")
	ErrFailedToConnect   = errors.New("failed to connect to mongodb")
	ErrHealthcheckFailed = errors.New("mongodb healthcheck failed")
)
