package auth

import "time"

// Config holds session and hashing settings.
type Config struct {
	TokenTTL   time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
	BcryptCost int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

// Options translates cfg into service options.
func (cfg Config) Options() []Option {
	return []Option{WithTokenTTL(cfg.TokenTTL), WithBcryptCost(cfg.BcryptCost)}
}
