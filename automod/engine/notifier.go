package engine

import (
	"context"
	"time"

	"github.com/truemoder/truemoder/automod/chat"
)

// Record of a ban, as passed to notifiers.
type Sanction struct {
	Chat chat.Chat
	User chat.User
	// set for sanctions issued by a command
	Admin *chat.User
	// "ban", or the command name
	Action string
	// "jail" or "command"
	Source string
	// violation count, for jail sanctions
	Count    int
	Duration time.Duration
	Display  string
}

// Interface for a type that can handle sending notifications
type Notifier interface {
	SendSanction(ctx context.Context, s Sanction) error
}

func (c *EventContext) notify(s Sanction) {
	if c.engine.Notifier == nil {
		return
	}
	if err := c.engine.Notifier.SendSanction(c.Ctx, s); err != nil {
		c.Logger.Error("failed to deliver notification", "err", err)
	}
}
