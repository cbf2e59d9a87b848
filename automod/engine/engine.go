package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/truemoder/truemoder/automod/cachestore"
	"github.com/truemoder/truemoder/automod/chat"
	"github.com/truemoder/truemoder/automod/duration"
	"github.com/truemoder/truemoder/automod/jail"
	"github.com/truemoder/truemoder/automod/throttle"
)

var ErrNilTransport = errors.New("engine requires a chat client")

// Explicit-content verdict for a piece of text.
type Classifier interface {
	Classify(text string) bool
}

type ClassifierFunc func(text string) bool

func (f ClassifierFunc) Classify(text string) bool {
	return f(text)
}

type Config struct {
	// Bot's own account, used to notice when it gets added to a chat
	BotUserID int64
	// Bot username, including the leading "@"
	BotName string
	// Link posted with setup instructions
	FAQLink string
	// Accounts which are treated as administrators of every chat, without any membership lookup
	SuperAdmins []int64

	Limits throttle.Limits
	// How long a flooding sender is restricted for
	FloodMuteTime time.Duration
	// Pause between a warning reply and the restriction which follows it, so the reply is seen before the user loses the ability to send
	SanctionPause time.Duration
	// Self-restriction applied to non-admins invoking the ban command
	BanMisusePenalty time.Duration
	// Self-restriction applied to non-admins invoking the mute command
	MuteMisusePenalty time.Duration
	// "typing" delay before greeting a chat
	GreetingPause time.Duration
}

func DefaultConfig() Config {
	return Config{
		Limits:            throttle.DefaultLimits(),
		FloodMuteTime:     120 * time.Second,
		SanctionPause:     time.Second,
		BanMisusePenalty:  30 * time.Minute,
		MuteMisusePenalty: 61 * time.Second,
		GreetingPause:     2 * time.Second,
	}
}

// Moderation decision engine: runs the flood gate, classification and escalation for incoming messages, and carries out the resulting sanctions through the chat client.
//
// Construct with [NewEngine]; the exported fields may be swapped out before the engine starts handling events.
type Engine struct {
	Logger     *slog.Logger
	Client     chat.Client
	Classifier Classifier
	Throttle   *throttle.Limiter
	Jail       *jail.Jail
	// admin status lookups (optional)
	Cache cachestore.CacheStore
	// notified of bans (optional)
	Notifier Notifier
	Parser   duration.Parser
	Config   Config

	// clock and wait hooks; tests replace these to avoid real sleeps
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	superAdmins map[int64]bool
}

func NewEngine(config Config, client chat.Client, classifier Classifier) (*Engine, error) {
	if client == nil {
		return nil, ErrNilTransport
	}
	if classifier == nil {
		classifier = ClassifierFunc(func(string) bool { return false })
	}
	admins := make(map[int64]bool, len(config.SuperAdmins))
	for _, id := range config.SuperAdmins {
		admins[id] = true
	}
	return &Engine{
		Logger:      slog.Default(),
		Client:      client,
		Classifier:  classifier,
		Throttle:    throttle.NewLimiter(),
		Jail:        jail.New(),
		Config:      config,
		Now:         time.Now,
		Sleep:       sleepContext,
		superAdmins: admins,
	}, nil
}

func (eng *Engine) now() time.Time {
	if eng.Now == nil {
		return time.Now()
	}
	return eng.Now()
}

func (eng *Engine) sleep(ctx context.Context, d time.Duration) error {
	if eng.Sleep == nil {
		return sleepContext(ctx, d)
	}
	return eng.Sleep(ctx, d)
}

func (eng *Engine) IsSuperAdmin(userID int64) bool {
	return eng.superAdmins[userID]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// similar to an HTTP server, we want to recover any panics from handler execution
func (eng *Engine) recoverHandler(handler string, msg *chat.Message) {
	if r := recover(); r != nil {
		eventErrorCount.WithLabelValues(handler).Inc()
		if msg != nil {
			eng.Logger.Error("moderation handler exception", "err", r, "handler", handler, "chat", msg.Chat.LogRepr(), "msg", msg.ID)
		} else {
			eng.Logger.Error("moderation handler exception", "err", r, "handler", handler)
		}
	}
}
