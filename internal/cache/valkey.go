// Package cache provides Valkey (Redis-compatible) client initialization
// and a read-through cache of content groups.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyOptions locates a Valkey server.
type ValkeyOptions struct {
	Host     string
	Port     string
	Password string
	// DB is the logical database index; tests use a separate one.
	DB int
}

// Addr returns host:port.
func (o ValkeyOptions) Addr() string {
	return net.JoinHostPort(o.Host, o.Port)
}

// ConnectValkey creates a Valkey client and verifies the connection with a
// ping. The client is closed again when the ping fails.
func ConnectValkey(opts ValkeyOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr(),
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", opts.Addr(), err)
	}

	slog.Info("valkey connected", "addr", opts.Addr(), "db", opts.DB)
	return client, nil
}
