package identifier

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DefaultRedisTTL keeps a day's counter around long enough to cover the day
// plus clock skew between hosts.
const DefaultRedisTTL = 72 * time.Hour

// nextSequenceScript increments the scope's key unless the scope is exhausted.
// ARGV[1] seeds a missing key; when it is negative the script leaves the key
// alone and asks for a seed instead.
const nextSequenceScript = `
	local current = redis.call('GET', KEYS[1])
	if not current then
		if tonumber(ARGV[1]) < 0 then
			return -2
		end
		redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[3])
		current = ARGV[1]
	end
	if tonumber(current) >= tonumber(ARGV[2]) then
		return -1
	end
	return redis.call('INCR', KEYS[1])
`

// Script arguments and results.
const (
	noSeed          = -1
	scriptExhausted = -1
	scriptNeedsSeed = -2
)

// RedisCounter keeps per-scope sequences in Redis with an atomic script.
// Unlike TableCounter, a sequence is consumed even if the caller's transaction
// later rolls back; the entity table's unique index stays the final guard.
type RedisCounter struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCounter returns a RedisCounter with the default TTL.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{Client: client, TTL: DefaultRedisTTL}
}

// SequenceKey is the Redis key holding the sequence of one scope.
func SequenceKey(kind Kind, prefix string) string {
	return fmt.Sprintf("identifier_seq:%s:%s", kind, prefix)
}

// Next runs the script without a seed first, so the entity table is only
// scanned when the key is missing at the moment the script runs.
func (c *RedisCounter) Next(ctx context.Context, tx *gorm.DB, s Scheme, prefix string) (int, error) {
	key := SequenceKey(s.Kind, prefix)

	n, err := c.eval(ctx, key, noSeed)
	if err != nil {
		return 0, err
	}
	if n == scriptNeedsSeed {
		seed, err := LastSequence(ctx, tx, s, prefix)
		if err != nil {
			return 0, err
		}
		if n, err = c.eval(ctx, key, seed); err != nil {
			return 0, err
		}
	}
	if n <= scriptExhausted {
		return 0, rangeExceeded(s, prefix)
	}
	return int(n), nil
}

func (c *RedisCounter) eval(ctx context.Context, key string, seed int) (int64, error) {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	n, err := c.Client.Eval(ctx, nextSequenceScript, []string{key}, seed, MaxSequence, int(ttl.Seconds())).Int64()
	if err != nil {
		return 0, Unavailable("increment "+key, err)
	}
	return n, nil
}
