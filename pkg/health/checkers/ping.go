package checkers

import (
	"context"
	"time"
)

const pingTimeout = time.Second

// Pinger is satisfied by *pgxpool.Pool and the redis cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports a dependency as ready when Ping succeeds within a second.
type PingChecker struct {
	name string
	p    Pinger
}

func NewPostgresChecker(pool Pinger) *PingChecker {
	return &PingChecker{name: "postgres", p: pool}
}

func NewRedisChecker(p Pinger) *PingChecker {
	return &PingChecker{name: "redis", p: p}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.p.Ping(ctx)
}
