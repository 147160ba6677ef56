// Package redis opens the optional cache connection. BookHub runs without
// Redis; when an address is configured the service waits for it at boot.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookhub/internal/logger"
)

// ErrDisabled is returned when no address is configured. Callers run
// without the caches in that case.
var ErrDisabled = errors.New("redis disabled: no address configured")

// ConnectOptions defines the client settings and the boot retry policy.
type ConnectOptions struct {
	Addr         string // ex: "localhost:6379", empty disables Redis
	User         string
	Password     string
	RedisDB      int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	ConnectTimeout time.Duration // total budget for boot attempts (ex: 30s)
	RetryInterval  time.Duration // first backoff step, doubled per attempt (ex: 2s)
	MaxWait        time.Duration // backoff cap (ex: 10s)
	PingTimeout    time.Duration // per-attempt PING deadline
	WarnThreshold  int           // attempts logged at Warn before escalating to Error
}

func (o ConnectOptions) validate() error {
	var errs []error
	if o.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ConnectTimeout must be > 0, got %v", o.ConnectTimeout))
	}
	if o.RetryInterval <= 0 {
		errs = append(errs, fmt.Errorf("RetryInterval must be > 0, got %v", o.RetryInterval))
	}
	if o.MaxWait <= 0 {
		errs = append(errs, fmt.Errorf("MaxWait must be > 0, got %v", o.MaxWait))
	}
	if o.PingTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PingTimeout must be > 0, got %v", o.PingTimeout))
	}
	if o.WarnThreshold < 0 {
		errs = append(errs, fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold))
	}
	return errors.Join(errs...)
}

// New builds a client and pings it with capped exponential backoff until it
// answers, ConnectTimeout elapses or ctx is cancelled. The client is closed
// on failure.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, ErrDisabled
	}
	if err := opts.validate(); err != nil {
		log.Error("invalid redis options", logger.Error(err))
		return nil, fmt.Errorf("redis options: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.RedisDB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	b := booter{
		opts: opts,
		log:  log.With(logger.String("addr", opts.Addr)),
	}
	if err := b.waitReady(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

type booter struct {
	opts ConnectOptions
	log  logger.Logger
}

func (b booter) waitReady(parent context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(parent, b.opts.ConnectTimeout)
	defer cancel()

	b.log.Info("connecting to redis", logger.Duration("timeout", b.opts.ConnectTimeout))
	start := time.Now()
	wait := b.opts.RetryInterval

	for attempt := 1; ; attempt++ {
		err := b.ping(ctx, client)
		if err == nil {
			if attempt > 1 {
				b.log.Warn("connected to redis after retry",
					logger.Int("attempts", attempt),
					logger.Duration("elapsed", time.Since(start)))
			} else {
				b.log.Info("connected to redis")
			}
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			b.log.Error("redis unavailable - giving up",
				logger.Int("attempts", attempt),
				logger.Duration("timeout", b.opts.ConnectTimeout),
				logger.Error(err))
			return fmt.Errorf("redis unavailable at %s after %d attempts (timeout: %v): %w",
				b.opts.Addr, attempt, b.opts.ConnectTimeout, err)
		case <-timer.C:
			b.logRetry(attempt, remaining(ctx), wait, err)
			wait = min(wait*2, b.opts.MaxWait)
		}
	}
}

func (b booter) ping(ctx context.Context, client *redis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, b.opts.PingTimeout)
	defer cancel()
	return client.Ping(pingCtx).Err()
}

// logRetry escalates to Error once the warn budget is spent or the deadline is close.
func (b booter) logRetry(attempt int, left, next time.Duration, err error) {
	fields := []logger.Field{
		logger.Int("attempt", attempt),
		logger.Duration("remaining", left),
		logger.Duration("next_retry_in", next),
		logger.Error(err),
	}
	switch {
	case left < 10*time.Second:
		b.log.Error("redis still down - retrying but timeout approaching", fields...)
	case attempt <= b.opts.WarnThreshold:
		b.log.Warn("redis connection failed, retrying", fields...)
	default:
		b.log.Error("redis still unavailable - connection attempts failing", fields...)
	}
}

func remaining(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
