package storage

import "fmt"

// Config selects and configures a backend.
type Config struct {
	// Backend is "memory", "redis" or "sql".
	Backend string

	// RedisURL for the redis backend, e.g. redis://localhost:6379/0.
	RedisURL string

	// Prefix is prepended to every redis key.
	Prefix string

	// DSN for the sql backend: a postgres URL or a sqlite file path.
	DSN string
}

func New(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(cfg.RedisURL, cfg.Prefix)
	case "sql":
		return OpenGorm(cfg.DSN)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}
