package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/truemoder/truemoder/automod/chat"
)

// Classified result of a single executor call. Calls are never retried, whatever the outcome.
type Outcome int

const (
	OutcomeOK Outcome = iota
	// the bot lacks rights, or the target is protected (chat creator or administrator)
	OutcomePermission
	OutcomeRateLimited
	// bot was removed from, or blocked in, the chat
	OutcomeUnauthorized
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomePermission:
		return "permission"
	case OutcomeRateLimited:
		return "rate-limited"
	case OutcomeUnauthorized:
		return "unauthorized"
	default:
		return "failed"
	}
}

// Restrictions and bans longer than 366 days are permanent to the Bot API, so anything past this is sent as this.
const MaxSanction = 400 * 24 * time.Hour

func sanctionUntil(now time.Time, d time.Duration) time.Time {
	if d > MaxSanction {
		d = MaxSanction
	}
	return now.Add(d)
}

const (
	opSend      = "send"
	opRestrict  = "restrict"
	opKick      = "kick"
	opDelete    = "delete"
	opGetMember = "get-member"
)

// Maps a transport failure to an outcome, and logs it at the level its kind calls for.
func (c *EventContext) classify(op string, err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	kind := chat.KindOf(err)
	transportErrorCount.WithLabelValues(op, kind.String()).Inc()
	logger := c.Logger.With("op", op, "kind", kind.String())

	switch kind {
	case chat.KindMessageNotFound:
		if op == opDelete {
			// already deleted (possibly by a chat admin); deletion is idempotent
			logger.Debug("message to delete not found")
			return OutcomeOK
		}
		logger.Debug("referenced message not found", "err", err)
		return OutcomeFailed
	case chat.KindNotEnoughRights:
		logger.Debug("not enough rights for moderation action", "err", err)
		return OutcomePermission
	case chat.KindTargetIsAdmin:
		logger.Debug("refusing to restrict a chat administrator", "err", err)
		return OutcomePermission
	case chat.KindTargetIsCreator:
		logger.Debug("can't restrict the chat creator", "err", err)
		return OutcomePermission
	case chat.KindRateLimited:
		logger.Error("chat rate limit reached", "err", err)
		return OutcomeRateLimited
	case chat.KindUnauthorized:
		logger.Info("chat call unauthorized", "err", err)
		return OutcomeUnauthorized
	default:
		logger.Error("chat call failed", "err", err)
		return OutcomeFailed
	}
}

// Sends a message to a chat. A nil ref is returned on any failure.
func (c *EventContext) Say(chatID int64, text string, opts *chat.SendOptions) (*chat.MessageRef, Outcome) {
	ref, err := c.engine.Client.Send(c.Ctx, chatID, text, opts)
	out := c.classify(opSend, err)
	if out != OutcomeOK {
		return nil, out
	}
	return ref, out
}

// Replies to the message being handled.
func (c *EventContext) Reply(text string, markup *chat.Markup) Outcome {
	_, out := c.Say(c.ChatID(), text, &chat.SendOptions{
		ReplyTo:               c.Message.ID,
		Markup:                markup,
		DisableWebPagePreview: true,
	})
	return out
}

// Takes away the user's ability to send anything in the current chat, for the given length of time.
func (c *EventContext) Restrict(userID int64, d time.Duration) Outcome {
	until := sanctionUntil(c.engine.now(), d)
	err := c.engine.Client.RestrictUntil(c.Ctx, c.ChatID(), userID, until, chat.Permissions{})
	out := c.classify(opRestrict, err)
	sanctionCount.WithLabelValues(opRestrict, out.String()).Inc()
	return out
}

// Removes the user from the current chat, for the given length of time.
func (c *EventContext) Kick(userID int64, d time.Duration) Outcome {
	until := sanctionUntil(c.engine.now(), d)
	err := c.engine.Client.KickUntil(c.Ctx, c.ChatID(), userID, until)
	out := c.classify(opKick, err)
	sanctionCount.WithLabelValues(opKick, out.String()).Inc()
	return out
}

// Deletes a message from the current chat. Deleting a message which is already gone counts as success.
func (c *EventContext) Delete(messageID int64) Outcome {
	err := c.engine.Client.DeleteMessage(c.Ctx, c.ChatID(), messageID)
	out := c.classify(opDelete, err)
	sanctionCount.WithLabelValues(opDelete, out.String()).Inc()
	return out
}

const adminCacheName = "admin"

// Checks whether user administers the chat: super-admins always do; everybody else is looked up (and cached). Any failure resolves to "not admin".
func (c *EventContext) IsAdmin(user *chat.User, ch *chat.Chat) bool {
	if user == nil {
		c.Logger.Error("there's no user to check rights")
		return false
	}
	if c.engine.IsSuperAdmin(user.ID) {
		return true
	}
	if ch == nil {
		c.Logger.Error("there's no chat to check rights")
		return false
	}

	ctx := c.Ctx
	cache := c.engine.Cache
	key := fmt.Sprintf("%d/%d", ch.ID, user.ID)
	if cache != nil {
		v, err := cache.Get(ctx, adminCacheName, key)
		if err != nil {
			c.Logger.Warn("admin status cache read failed", "err", err)
		} else if v != "" {
			adminLookups.WithLabelValues("cache").Inc()
			return v == "true"
		}
	}

	adminLookups.WithLabelValues("api").Inc()
	member, err := c.engine.Client.GetChatMember(ctx, ch.ID, user.ID)
	if c.classify(opGetMember, err) != OutcomeOK || member == nil {
		return false
	}
	isAdmin := member.IsAdmin()
	// only positives are cached, so a newly promoted admin is recognized right away
	if isAdmin && cache != nil {
		if err := cache.Set(ctx, adminCacheName, key, strconv.FormatBool(isAdmin)); err != nil {
			c.Logger.Warn("admin status cache write failed", "err", err)
		}
	}
	return isAdmin
}
