package requestid

import (
	"context"
	"log/slog"

	"github.com/map-of-pi/mapofpi/pkg/logger"
)

// LoggerExtractor tags log records with the request ID carried by the
// context, covering both status API requests and outbound backend calls.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id := FromContext(ctx)
		if id == "" {
			return slog.Attr{}, false
		}
		return logger.RequestID(id), true
	}
}
