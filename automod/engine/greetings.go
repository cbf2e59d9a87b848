package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/truemoder/truemoder/automod/chat"
)

const (
	HandlerMedia      = "media"
	HandlerNewMembers = "new_members"
	HandlerMigration  = "migration"
	HandlerStart      = "start"
)

// Deletes media messages (stickers, photos, videos, ...) posted by anyone except super-admins. Only applies to supergroups.
func (eng *Engine) HandleMedia(ctx context.Context, msg *chat.Message) error {
	if msg == nil || msg.Chat == nil {
		return fmt.Errorf("incomplete media message")
	}
	defer eng.recoverHandler(HandlerMedia, msg)
	eventProcessCount.WithLabelValues(HandlerMedia).Inc()

	if msg.Chat.Type != chat.ChatSupergroup || !msg.ContentType.IsMedia() {
		return nil
	}
	if msg.From != nil && eng.IsSuperAdmin(msg.From.ID) {
		return nil
	}
	c := eng.NewEventContext(ctx, msg, HandlerMedia)
	c.Logger.Debug("deleting media message", "content_type", string(msg.ContentType))
	c.Delete(msg.ID)
	return nil
}

// Greets a chat when the bot itself has been added to it.
func (eng *Engine) HandleNewMembers(ctx context.Context, msg *chat.Message) error {
	if msg == nil || msg.Chat == nil {
		return fmt.Errorf("incomplete new members message")
	}
	defer eng.recoverHandler(HandlerNewMembers, msg)
	eventProcessCount.WithLabelValues(HandlerNewMembers).Inc()

	added := false
	for _, u := range msg.NewChatMembers {
		if u.ID == eng.Config.BotUserID {
			added = true
			break
		}
	}
	if !added {
		return nil
	}

	c := eng.NewEventContext(ctx, msg, HandlerNewMembers)
	c.Logger.Info("bot added to chat", "chat_type", string(msg.Chat.Type), "chat_name", msg.Chat.LogRepr())
	if err := eng.sleep(c.Ctx, eng.Config.GreetingPause); err != nil {
		return err
	}
	switch msg.Chat.Type {
	case chat.ChatSupergroup:
		c.Say(c.ChatID(), WelcomeMessage, &chat.SendOptions{
			Markup:                chat.LinkMarkup(WelcomeButton, eng.Config.FAQLink),
			DisableWebPagePreview: true,
		})
	case chat.ChatGroup:
		c.Say(c.ChatID(), GroupOnlyMessage, nil)
	}
	return nil
}

// Posts setup instructions once a group has been converted into a supergroup.
func (eng *Engine) HandleMigration(ctx context.Context, msg *chat.Message) error {
	if msg == nil || msg.Chat == nil {
		return fmt.Errorf("incomplete migration message")
	}
	defer eng.recoverHandler(HandlerMigration, msg)
	eventProcessCount.WithLabelValues(HandlerMigration).Inc()

	c := eng.NewEventContext(ctx, msg, HandlerMigration)
	c.Logger.Info("chat migrated to supergroup", "from", msg.MigrateFromChatID)
	if err := eng.sleep(c.Ctx, eng.Config.GreetingPause); err != nil {
		return err
	}
	c.Say(c.ChatID(), MigratedMessage, &chat.SendOptions{
		Markup:                chat.LinkMarkup(MigratedButton, eng.Config.FAQLink),
		DisableWebPagePreview: true,
	})
	return nil
}

// Replies to /start and /help in private chats.
func (eng *Engine) HandleStart(ctx context.Context, msg *chat.Message) error {
	if msg == nil || msg.Chat == nil {
		return fmt.Errorf("incomplete start message")
	}
	defer eng.recoverHandler(HandlerStart, msg)
	start := time.Now()
	defer func() {
		eventProcessDuration.WithLabelValues(HandlerStart).Observe(time.Since(start).Seconds())
		eventProcessCount.WithLabelValues(HandlerStart).Inc()
	}()

	if msg.Chat.Type != chat.ChatPrivate {
		return nil
	}
	c := eng.NewEventContext(ctx, msg, HandlerStart)
	if res := c.gate(eng.Config.Limits.For(HandlerStart)); !res.Accepted {
		return nil
	}
	if err := eng.sleep(c.Ctx, eng.Config.GreetingPause); err != nil {
		return err
	}
	c.Say(c.ChatID(), StartMessage, &chat.SendOptions{
		Markup: chat.LinkMarkup(AddToChatButton, eng.StartGroupLink()),
	})
	return nil
}

// Deep link which offers to add the bot to a group.
func (eng *Engine) StartGroupLink() string {
	return fmt.Sprintf("https://telegram.me/%s?startgroup=true", strings.TrimPrefix(eng.Config.BotName, "@"))
}
