package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/truemoder/truemoder/automod/cachestore"
	"github.com/truemoder/truemoder/automod/chat"
)

// A single call made against a [RecordingClient].
type ClientCall struct {
	Op      string
	ChatID  int64
	UserID  int64
	MsgID   int64
	Text    string
	Until   time.Time
	Options *chat.SendOptions
}

// In-memory [chat.Client] which records every call, and fails the ones configured to. Intentionally exported, for use in other packages' tests.
type RecordingClient struct {
	// per-operation failures ("send", "restrict", "kick", "delete", "get-member")
	Errors map[string]error
	// membership status by "chat/user"; unknown members are plain members
	Members map[string]chat.MemberStatus

	mu     sync.Mutex
	calls  []ClientCall
	nextID int64
}

var _ chat.Client = (*RecordingClient)(nil)

func NewRecordingClient() *RecordingClient {
	return &RecordingClient{
		Errors:  make(map[string]error),
		Members: make(map[string]chat.MemberStatus),
		nextID:  1000,
	}
}

func (rc *RecordingClient) SetMember(chatID, userID int64, status chat.MemberStatus) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.Members[fmt.Sprintf("%d/%d", chatID, userID)] = status
}

func (rc *RecordingClient) SetError(op string, err error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.Errors[op] = err
}

func (rc *RecordingClient) record(call ClientCall) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.calls = append(rc.calls, call)
	return rc.Errors[call.Op]
}

func (rc *RecordingClient) Calls() []ClientCall {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]ClientCall, len(rc.calls))
	copy(out, rc.calls)
	return out
}

// Calls filtered down to a single operation.
func (rc *RecordingClient) CallsOf(op string) []ClientCall {
	var out []ClientCall
	for _, c := range rc.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (rc *RecordingClient) Ops() []string {
	var out []string
	for _, c := range rc.Calls() {
		out = append(out, c.Op)
	}
	return out
}

func (rc *RecordingClient) Reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.calls = nil
}

func (rc *RecordingClient) Send(ctx context.Context, chatID int64, text string, opts *chat.SendOptions) (*chat.MessageRef, error) {
	if err := rc.record(ClientCall{Op: opSend, ChatID: chatID, Text: text, Options: opts}); err != nil {
		return nil, err
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.nextID++
	return &chat.MessageRef{ChatID: chatID, MessageID: rc.nextID}, nil
}

func (rc *RecordingClient) RestrictUntil(ctx context.Context, chatID, userID int64, until time.Time, perms chat.Permissions) error {
	return rc.record(ClientCall{Op: opRestrict, ChatID: chatID, UserID: userID, Until: until})
}

func (rc *RecordingClient) KickUntil(ctx context.Context, chatID, userID int64, until time.Time) error {
	return rc.record(ClientCall{Op: opKick, ChatID: chatID, UserID: userID, Until: until})
}

func (rc *RecordingClient) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return rc.record(ClientCall{Op: opDelete, ChatID: chatID, MsgID: messageID})
}

func (rc *RecordingClient) GetChatMember(ctx context.Context, chatID, userID int64) (*chat.MemberInfo, error) {
	if err := rc.record(ClientCall{Op: opGetMember, ChatID: chatID, UserID: userID}); err != nil {
		return nil, err
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	status, ok := rc.Members[fmt.Sprintf("%d/%d", chatID, userID)]
	if !ok {
		status = chat.StatusMember
	}
	return &chat.MemberInfo{User: chat.User{ID: userID}, Status: status}, nil
}

// Engine wired to a [RecordingClient], a fixed clock, and no-op waits (the requested waits are recorded instead). Words "spam" and "explicit" are classified as violations.
type EngineFixture struct {
	Engine *Engine
	Client *RecordingClient
	Clock  time.Time

	mu     sync.Mutex
	sleeps []time.Duration
}

func (f *EngineFixture) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.sleeps))
	copy(out, f.sleeps)
	return out
}

func EngineTestFixture(superAdmins ...int64) *EngineFixture {
	client := NewRecordingClient()
	config := DefaultConfig()
	config.BotUserID = 42
	config.BotName = "@truemoder_bot"
	config.FAQLink = "https://example.com/faq"
	config.SuperAdmins = superAdmins

	classifier := ClassifierFunc(func(text string) bool {
		return text == "spam" || text == "explicit"
	})
	eng, err := NewEngine(config, client, classifier)
	if err != nil {
		panic(err)
	}
	f := &EngineFixture{
		Engine: eng,
		Client: client,
		Clock:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	eng.Logger = slog.Default()
	eng.Cache = cachestore.NewMemCacheStore(100, time.Hour)
	eng.Now = func() time.Time { return f.Clock }
	eng.Throttle.Now = func() time.Time { return f.Clock }
	eng.Sleep = func(ctx context.Context, d time.Duration) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.sleeps = append(f.sleeps, d)
		return ctx.Err()
	}
	return f
}
