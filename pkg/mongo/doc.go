// Package mongo connects to MongoDB, which stores the server logs in
// production.
//
//	cfg := mongo.Config{ConnectionURL: "mongodb://localhost:27017", Database: "map-of-pi"}
//	client, err := mongo.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(context.Background())
//
//	sink := logger.NewMongoHandler(mongo.LogCollection(client, cfg))
//
// Healthcheck turns a client into a readiness check for the status API.
package mongo
