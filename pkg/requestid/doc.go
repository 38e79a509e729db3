// Package requestid carries request correlation identifiers through the
// client.
//
// Every call the client makes to the Map of Pi backend is tagged with an
// "X-Request-ID" header so backend access logs and local structured logs can be
// joined. The same identifier is stored in the context.Context so log records
// emitted while the request is in flight pick it up through LoggerExtractor.
//
// The package offers:
//
//   - ClientMiddleware, a resty request hook that reuses the ID found in the
//     request context or generates a fresh UUIDv4.
//   - Middleware for the local status API: incoming IDs are validated and
//     reused, invalid ones are replaced, and the chosen ID is echoed back.
//   - WithContext, FromContext and New for explicit propagation, e.g. to tag
//     every request of one login sequence with the same ID.
//   - LoggerExtractor for pkg/logger.
//
// # Usage
//
//	ctx = requestid.WithContext(ctx, requestid.New())
//
//	client := resty.New().OnBeforeRequest(requestid.ClientMiddleware())
//	client.R().SetContext(ctx).Get("/users/me") // sends X-Request-ID
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	log.InfoContext(ctx, "auto-login") // includes request_id
package requestid
