package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	lockoutCountPrefix = "lockout:count:"
	lockoutUntilPrefix = "lockout:until:"

	redisGuardTimeout = time.Second
)

// RedisGuard is a Guard backed by a shared Redis instance, so lockout
// state survives restarts and is shared across server instances.
// Backend errors fail open and are logged: an unreachable guard must not
// lock everyone out.
type RedisGuard struct {
	client    redis.UniversalClient
	threshold int
	duration  time.Duration
}

func NewRedisGuard(client redis.UniversalClient, threshold int, duration time.Duration) *RedisGuard {
	return &RedisGuard{
		client:    client,
		threshold: threshold,
		duration:  duration,
	}
}

func (g *RedisGuard) IsLocked(email, origin string) (time.Time, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisGuardTimeout)
	defer cancel()

	val, err := g.client.Get(ctx, lockoutUntilPrefix+lockoutKey(email, origin)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("lockout guard: %v", err)
		}
		return time.Time{}, false
	}

	ts, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	until := time.Unix(0, ts)
	if until.After(time.Now()) {
		return until, true
	}
	return time.Time{}, false
}

func (g *RedisGuard) RecordFailure(email, origin string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisGuardTimeout)
	defer cancel()

	key := lockoutKey(email, origin)
	count, err := g.client.Incr(ctx, lockoutCountPrefix+key).Result()
	if err != nil {
		log.Warnf("lockout guard: %v", err)
		return
	}

	if count >= int64(g.threshold) {
		until := time.Now().Add(g.duration)
		// The until key carries its own TTL, so an elapsed lock window
		// expires without a cleanup pass.
		err := g.client.Set(ctx, lockoutUntilPrefix+key, until.UnixNano(), g.duration).Err()
		if err != nil {
			log.Warnf("lockout guard: %v", err)
		}
	}
}

func (g *RedisGuard) Clear(email, origin string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisGuardTimeout)
	defer cancel()

	key := lockoutKey(email, origin)
	err := g.client.Del(ctx, lockoutCountPrefix+key, lockoutUntilPrefix+key).Err()
	if err != nil {
		log.Warnf("lockout guard: %v", err)
	}
}
