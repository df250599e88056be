package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// Goroutines fails when more than limit goroutines are running.
func Goroutines(limit int) Func {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("%d goroutines, limit %d", n, limit)
		}
		return nil
	}
}

// Pinger is implemented by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks a database connection.
func Ping(p Pinger) Func {
	return func(ctx context.Context) error {
		return errors.Wrap(p.Ping(ctx), "ping")
	}
}

// Counter is anything reporting a size, such as the product catalog.
type Counter interface {
	Len() int
}

// NotEmpty fails while c has no entries.
func NotEmpty(name string, c Counter) Func {
	return func(context.Context) error {
		if c.Len() == 0 {
			return errors.Errorf("%s is empty", name)
		}
		return nil
	}
}
