package engine

import (
	"context"
	"log/slog"

	"github.com/truemoder/truemoder/automod/chat"
)

// Per-event handle used by handlers: the message being handled, a logger with event-specific fields pre-populated, and the executor methods (Say, Restrict, Kick, ...) which act on the chat.
type EventContext struct {
	// Actual golang "context.Context", for cancellation of waits and transport calls
	Ctx context.Context
	// slog logger handle, with event-specific structured fields pre-populated. Pointer, but expected to never be nil.
	Logger *slog.Logger
	// Message which triggered the handler. Pointer, but expected to never be nil.
	Message *chat.Message
	// handler name, used as a metrics label and as the default gate name
	Handler string

	engine *Engine // NOTE: pointer, but expected never to be nil
}

func (eng *Engine) NewEventContext(ctx context.Context, msg *chat.Message, handler string) *EventContext {
	logger := eng.Logger.With("handler", handler, "msg", msg.ID)
	if msg.Chat != nil {
		logger = logger.With("chat", msg.Chat.ID)
	}
	if msg.From != nil {
		logger = logger.With("user", msg.From.ID)
	}
	return &EventContext{
		Ctx:     ctx,
		Logger:  logger,
		Message: msg,
		Handler: handler,
		engine:  eng,
	}
}

// Detaches the context from cancellation. Used once a violation has been recorded, so the punishment path always runs to completion.
func (c *EventContext) detach() {
	c.Ctx = context.WithoutCancel(c.Ctx)
}

func (c *EventContext) ChatID() int64 {
	if c.Message.Chat == nil {
		return 0
	}
	return c.Message.Chat.ID
}
