// Package mongo manages the MongoDB connection and provides a small typed
// collection wrapper used by the document stores.
//
// New connects with retries and a ping, NewWithDatabase additionally selects
// the database from Config (DB_DATABASE, default "files_manager"), and
// Healthcheck returns a probe suitable for the readiness endpoint.
//
// # Usage
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	users := mongo.NewCollection[User](db, "users")
//	u, err := users.FindOne(ctx, bson.M{"email": email})
//	if errors.Is(err, mongo.ErrNoDocuments) {
//		// not found
//	}
//
// Paginate always sorts by _id ascending so pages are stable across calls.
package mongo
