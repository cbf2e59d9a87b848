package consumer

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truemoder/truemoder/automod/chat"
	"github.com/truemoder/truemoder/telegram"
)

type fakeSource struct {
	mu      sync.Mutex
	batches [][]telegram.Update
	errs    []error
	offsets []int64
}

func (s *fakeSource) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error) {
	s.mu.Lock()
	s.offsets = append(s.offsets, offset)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		s.mu.Unlock()
		return nil, err
	}
	if len(s.batches) > 0 {
		b := s.batches[0]
		s.batches = s.batches[1:]
		s.mu.Unlock()
		return b, nil
	}
	s.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *fakeSource) Offsets() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.offsets...)
}

func TestPollingConsumer(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(mr.Set(DefaultCursorKey, "100"))

	r, f := testRouter()
	src := &fakeSource{
		errs: []error{&chat.Error{Kind: chat.KindGeneric, Code: 502, Description: "Bad Gateway"}},
		batches: [][]telegram.Update{
			{*groupText(100, 7, "привет"), *groupText(101, 8, "spam")},
		},
	}
	pc := &PollingConsumer{
		Parallelism:  2,
		Logger:       slog.Default(),
		RedisClient:  rdb,
		Source:       src,
		Router:       r,
		ErrorBackoff: time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pc.Run(ctx) }()

	require.Eventually(func() bool {
		return len(src.Offsets()) >= 3 && len(f.Client.Ops()) >= 2
	}, 5*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(<-done)

	// failed poll is retried with the same offset
	assert.Equal([]int64{100, 100, 102}, src.Offsets()[:3])
	assert.Equal([]string{"delete", "send"}, f.Client.Ops())

	require.NoError(pc.PersistCursor(context.Background()))
	v, err := mr.Get(DefaultCursorKey)
	require.NoError(err)
	assert.Equal("102", v)
}

func TestPollingConsumerUnauthorized(t *testing.T) {
	r, _ := testRouter()
	src := &fakeSource{
		errs: []error{&chat.Error{Kind: chat.KindUnauthorized, Code: 401, Description: "Unauthorized"}},
	}
	pc := &PollingConsumer{Logger: slog.Default(), Source: src, Router: r}
	assert.Error(t, pc.Run(context.Background()))
}

func TestCursorWithoutRedis(t *testing.T) {
	assert := assert.New(t)
	pc := &PollingConsumer{Logger: slog.Default()}
	ctx := context.Background()

	cur, err := pc.ReadLastCursor(ctx)
	assert.NoError(err)
	assert.Equal(int64(0), cur)
	assert.NoError(pc.PersistCursor(ctx))
	assert.NoError(pc.RunPersistCursor(ctx))
}

func TestRunPersistCursor(t *testing.T) {
	assert := assert.New(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	pc := &PollingConsumer{Logger: slog.Default(), RedisClient: rdb, CursorKey: "test/offset"}
	pc.lastOffset = 55

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// persists the final value on the way out
	assert.NoError(pc.RunPersistCursor(ctx))
	v, err := mr.Get("test/offset")
	assert.NoError(err)
	assert.Equal("55", v)

	cur, err := pc.ReadLastCursor(context.Background())
	assert.NoError(err)
	assert.Equal(int64(55), cur)
}
