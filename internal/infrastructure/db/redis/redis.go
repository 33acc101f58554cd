// Package redis holds the Redis-backed login attempt limiter and CLI session
// storage.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clientName  = "gccconnect"
	pingTimeout = 5 * time.Second
	defaultAddr = "localhost:6379"
	minPoolSize = 2
)

// Config is the subset of connection settings the service exposes.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	// Timeout bounds dialing, each command and the startup ping.
	Timeout time.Duration
}

func (c Config) options() *redis.Options {
	addr := c.Addr
	if addr == "" {
		addr = defaultAddr
	}
	o := &redis.Options{
		Addr:       addr,
		Password:   c.Password,
		DB:         c.DB,
		ClientName: clientName,
	}
	if c.PoolSize > 0 {
		o.PoolSize = max(c.PoolSize, minPoolSize)
	}
	if c.Timeout > 0 {
		o.DialTimeout = c.Timeout
		o.ReadTimeout = c.Timeout
		o.WriteTimeout = c.Timeout
	}
	return o
}

// Connect opens a client and pings it. The client is closed when the ping
// fails.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := cfg.options()
	client := redis.NewClient(opts)

	wait := cfg.Timeout
	if wait <= 0 {
		wait = pingTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s db %d: %w", opts.Addr, opts.DB, err)
	}
	return client, nil
}
