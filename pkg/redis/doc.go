// Package redis wraps go-redis with connection retries, a readiness probe and
// a small prefixed key/value Store used for session tokens.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	tokens := redis.NewStore(client, "auth_")
//	_ = tokens.Set(ctx, token, userID, 24*time.Hour)
package redis
