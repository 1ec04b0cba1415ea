package store

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every redis key this service writes, covering both
// the scan-event queue and the worker's counters.
const keyPrefix = "qrattend"

// Key builds a namespaced redis key from path segments.
func Key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

// Redis wraps the shared client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts; the scan path must not
// stall behind a slow cache.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		ClientName:   "qrattend",
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}
