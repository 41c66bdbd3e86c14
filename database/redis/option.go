package redis

import (
	"github.com/go-redis/redis/v8"
)

// An Option configures a *Database
type Option interface {
	Apply(*Database)
}

// OptionFunc is a function that configures a *Database
type OptionFunc func(*Database)

// Apply is a function that set value to *Database
func (f OptionFunc) Apply(db *Database) {
	f(db)
}

// WithHooks registers go-redis hooks, typically for tracing or metrics.
func WithHooks(hooks ...redis.Hook) Option {
	return OptionFunc(func(db *Database) {
		if db.db == nil {
			return
		}
		for _, hook := range hooks {
			db.db.AddHook(hook)
		}
	})
}
