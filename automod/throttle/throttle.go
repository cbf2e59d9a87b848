// Per-key minimum-interval gate with exceed tracking ("anti-flood").
//
// Every key has an independent window. A call is accepted when at least the configured interval has passed since the previous accepted call for the same key; otherwise it is throttled and the key's exceed count grows until the next accepted call resets it.
package throttle

import (
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Outcome of a single gate check.
type Result struct {
	Key      string
	Accepted bool
	// minimum interval the key was checked against
	Rate time.Duration
	// time since the last accepted call (zero when the key was new)
	Elapsed time.Duration
	// number of throttled calls since the last accepted one (zero when accepted)
	ExceededCount int
	// how long until the window re-opens (zero when accepted)
	WaitRemaining time.Duration
}

type keyState struct {
	last     time.Time
	rate     time.Duration
	exceeded int
}

// Limiter is safe for concurrent use. Read-modify-write of a single key is atomic.
type Limiter struct {
	// clock; defaults to time.Now
	Now func() time.Time

	states *xsync.MapOf[string, keyState]
}

func NewLimiter() *Limiter {
	return &Limiter{
		Now:    time.Now,
		states: xsync.NewMapOf[string, keyState](),
	}
}

func (l *Limiter) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

// Checks (and records) a call against the key's window.
func (l *Limiter) Check(key string, rate time.Duration) Result {
	now := l.now()
	var res Result
	l.states.Compute(key, func(old keyState, loaded bool) (keyState, bool) {
		res = Result{Key: key, Rate: rate}
		if !loaded {
			res.Accepted = true
			return keyState{last: now, rate: rate}, false
		}
		elapsed := now.Sub(old.last)
		res.Elapsed = elapsed
		if elapsed >= rate {
			res.Accepted = true
			return keyState{last: now, rate: rate}, false
		}
		old.exceeded++
		old.rate = rate
		res.ExceededCount = old.exceeded
		res.WaitRemaining = rate - elapsed
		return old, false
	})
	return res
}

// Reports the current state of a key without recording a call. The second return value is false for unknown keys.
func (l *Limiter) Peek(key string) (Result, bool) {
	st, ok := l.states.Load(key)
	if !ok {
		return Result{Key: key}, false
	}
	elapsed := l.now().Sub(st.last)
	res := Result{
		Key:           key,
		Rate:          st.rate,
		Elapsed:       elapsed,
		ExceededCount: st.exceeded,
		Accepted:      elapsed >= st.rate,
	}
	if !res.Accepted {
		res.WaitRemaining = st.rate - elapsed
	}
	return res, true
}

// Drops keys whose last accepted call is older than maxAge, and which are not inside an open window. Returns the number of removed keys.
func (l *Limiter) Sweep(maxAge time.Duration) int {
	now := l.now()
	var stale []string
	l.states.Range(func(key string, st keyState) bool {
		if now.Sub(st.last) > maxAge {
			stale = append(stale, key)
		}
		return true
	})
	removed := 0
	for _, key := range stale {
		l.states.Compute(key, func(old keyState, loaded bool) (keyState, bool) {
			if !loaded {
				return old, true
			}
			if age := now.Sub(old.last); age > maxAge && age >= old.rate {
				removed++
				return old, true
			}
			return old, false
		})
	}
	return removed
}

func (l *Limiter) Len() int {
	return l.states.Size()
}

// Scopes a gate key to one sender in one chat.
func SenderKey(key string, chatID, userID int64) string {
	return fmt.Sprintf("%s/%d/%d", key, chatID, userID)
}
