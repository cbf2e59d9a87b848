package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/truemoder/truemoder/automod/chat"
	"github.com/truemoder/truemoder/telegram"

	"github.com/redis/go-redis/v9"
)

const DefaultCursorKey = "truemoder/offset"

// Source of updates for long polling; implemented by [telegram.Client].
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

type PollingConsumer struct {
	Parallelism int
	Logger      *slog.Logger
	RedisClient *redis.Client
	Source      UpdateSource
	Router      *Router
	// long poll timeout; the source's HTTP client must allow for it
	PollTimeout time.Duration
	// wait after a failed poll, unless the API asks for longer
	ErrorBackoff time.Duration
	CursorKey    string

	// lastOffset is the ID of the next update to request: one more than the most recent update we've received and begun to handle.
	// This number is periodically persisted to redis, if redis is present.
	// Handling itself is concurrent, so an update below this offset may still be in flight at any time;
	// but you must use atomics when updating or reading this (to avoid data races).
	lastOffset int64
}

func (pc *PollingConsumer) cursorKey() string {
	if pc.CursorKey == "" {
		return DefaultCursorKey
	}
	return pc.CursorKey
}

func (pc *PollingConsumer) Run(ctx context.Context) error {
	if pc.Router == nil || pc.Router.Engine == nil {
		return fmt.Errorf("nil engine")
	}
	if pc.Source == nil {
		return fmt.Errorf("nil update source")
	}

	offset, err := pc.ReadLastCursor(ctx)
	if err != nil {
		return err
	}
	atomic.StoreInt64(&pc.lastOffset, offset)

	timeout := pc.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	backoff := pc.ErrorBackoff
	if backoff <= 0 {
		backoff = 3 * time.Second
	}

	scheduler := NewScheduler(ctx, pc.Parallelism, "polling", pc.Router.HandleUpdate)
	defer scheduler.Shutdown()
	pc.Logger.Info("polling for updates", "offset", offset, "parallelism", pc.Parallelism, "timeout", timeout)

	for {
		if ctx.Err() != nil {
			return nil
		}
		updates, err := pc.Source.GetUpdates(ctx, offset, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			wait := backoff
			var ce *chat.Error
			if errors.As(err, &ce) {
				if ce.Kind == chat.KindUnauthorized {
					return fmt.Errorf("polling for updates: %w", err)
				}
				if ce.RetryAfter > wait {
					wait = ce.RetryAfter
				}
			}
			pc.Logger.Warn("polling for updates failed", "err", err, "wait", wait)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			continue
		}

		for i := range updates {
			upd := &updates[i]
			updatesReceived.WithLabelValues("polling").Inc()
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
				atomic.StoreInt64(&pc.lastOffset, offset)
			}
			if err := scheduler.AddWork(ctx, UpdateKey(upd), upd); err != nil {
				return nil
			}
		}
	}
}

func (pc *PollingConsumer) ReadLastCursor(ctx context.Context) (int64, error) {
	// if redis isn't configured, just skip
	if pc.RedisClient == nil {
		pc.Logger.Info("redis not configured, skipping cursor read")
		return 0, nil
	}

	val, err := pc.RedisClient.Get(ctx, pc.cursorKey()).Int64()
	if err == redis.Nil {
		pc.Logger.Info("no pre-existing cursor in redis")
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	pc.Logger.Info("successfully found prior update offset in redis", "offset", val)
	return val, nil
}

func (pc *PollingConsumer) PersistCursor(ctx context.Context) error {
	// if redis isn't configured, just skip
	if pc.RedisClient == nil {
		return nil
	}
	lastOffset := atomic.LoadInt64(&pc.lastOffset)
	if lastOffset <= 0 {
		return nil
	}
	// the Bot API itself keeps unconfirmed updates for 24 hours
	return pc.RedisClient.Set(ctx, pc.cursorKey(), lastOffset, 24*time.Hour).Err()
}

// this method runs in a loop, persisting the current cursor state every 5 seconds
func (pc *PollingConsumer) RunPersistCursor(ctx context.Context) error {

	// if redis isn't configured, just skip
	if pc.RedisClient == nil {
		return nil
	}
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			lastOffset := atomic.LoadInt64(&pc.lastOffset)
			if lastOffset >= 1 {
				pc.Logger.Info("persisting final update offset", "offset", lastOffset)
				// ctx is already done at this point
				if err := pc.PersistCursor(context.Background()); err != nil {
					pc.Logger.Error("failed to persist cursor", "err", err, "offset", lastOffset)
				}
			}
			return nil
		case <-ticker.C:
			lastOffset := atomic.LoadInt64(&pc.lastOffset)
			if lastOffset >= 1 {
				if err := pc.PersistCursor(ctx); err != nil {
					pc.Logger.Error("failed to persist cursor", "err", err, "offset", lastOffset)
				}
			}
		}
	}
}
