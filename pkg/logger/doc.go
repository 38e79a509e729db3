// Package logger builds *slog.Logger instances with functional options,
// attribute helpers for the login domain, and optional sinks.
//
// New creates a text or JSON handler, fans records out to any sinks, and
// wraps the result in a ContextHandler that runs ContextExtractor callbacks
// (such as the request ID) on every record.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Parse(os.Getenv("APP_ENV")), "mapofpi"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "user signed in",
//		logger.PiUID(user.PiUID),
//		logger.Membership(class),
//		logger.Attempt(attempt),
//	)
//
// # Environments
//
// WithEnvironment logs readable text at debug level in development and
// sandbox, and JSON at info level in production.
//
// # MongoDB sink
//
// In production, records can also be stored in the serverLogs collection:
//
//	coll := client.Database(db).Collection(logger.DefaultLogCollection)
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "mapofpi"),
//		logger.WithSinks(logger.NewMongoHandler(coll)),
//	)
//
// Each document carries timestamp, level, message and the record attributes
// under meta; groups become nested documents.
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
