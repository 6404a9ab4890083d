// Package auth registers users and manages opaque session tokens.
//
// Login checks an email/password pair against a bcrypt digest and stores a
// random token in a TokenStore with a fixed TTL (24h by default). Resolve
// is a pure read: it never extends a session. Every authentication failure
// surfaces as ErrUnauthorized so callers cannot probe which emails exist.
//
// Storage is injected: MongoUserStorage and RedisTokenStore in production,
// MemoryUserStorage and MemoryTokenStore in tests.
package auth
