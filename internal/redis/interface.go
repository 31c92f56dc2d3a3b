package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client wraps redis.UniversalClient so repositories depend on an interface
// the tests can satisfy with miniredis-backed clients.
type Client interface {
	redis.UniversalClient
}
