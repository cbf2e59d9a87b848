package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/truemoder/truemoder/automod/chat"
	"github.com/truemoder/truemoder/automod/jail"
	"github.com/truemoder/truemoder/automod/throttle"
)

const HandlerText = "text"

// Entry point for every text message in a moderated chat: flood gate, classification, escalation, and sanction.
func (eng *Engine) HandleIncomingText(ctx context.Context, msg *chat.Message) error {
	if msg == nil || msg.Chat == nil || msg.From == nil {
		return fmt.Errorf("incomplete text message")
	}
	defer eng.recoverHandler(HandlerText, msg)
	start := time.Now()
	defer func() {
		eventProcessDuration.WithLabelValues(HandlerText).Observe(time.Since(start).Seconds())
		eventProcessCount.WithLabelValues(HandlerText).Inc()
	}()

	c := eng.NewEventContext(ctx, msg, HandlerText)
	if res := c.gate(eng.Config.Limits.For(HandlerText)); !res.Accepted {
		// flooding messages are dropped before classification
		return nil
	}
	if msg.Text == "" {
		return nil
	}
	if !eng.Classifier.Classify(msg.Text) {
		return nil
	}
	return c.punish()
}

// Records a violation for the message sender, and carries out the tier's sanction.
func (c *EventContext) punish() error {
	eng := c.engine
	user := c.Message.From
	v := eng.Jail.Violation(user.ID)
	verdictCount.WithLabelValues(v.Tier.String()).Inc()
	c.Logger = c.Logger.With("violations", v.Count, "tier", v.Tier.String())
	c.Logger.Info("explicit message detected")

	// the violation is on record now; finish the job even if the caller goes away
	c.detach()

	c.Delete(c.Message.ID)

	link := UserLink(user)
	switch v.Tier {
	case jail.TierWarn:
		c.Say(c.ChatID(), fmt.Sprintf(WarnMessage, link), nil)
	case jail.TierMute:
		c.Say(c.ChatID(), fmt.Sprintf(MuteWarnMessage, link), nil)
		_ = eng.sleep(c.Ctx, eng.Config.SanctionPause)
		c.Restrict(user.ID, v.Sanction)
	case jail.TierBan:
		c.Say(c.ChatID(), fmt.Sprintf(BanWarnMessage, link), nil)
		_ = eng.sleep(c.Ctx, eng.Config.SanctionPause)
		if c.Kick(user.ID, v.Sanction) == OutcomeOK {
			c.notify(Sanction{
				Chat:     *c.Message.Chat,
				User:     *user,
				Action:   "ban",
				Source:   "jail",
				Count:    v.Count,
				Duration: v.Sanction,
			})
		}
	}
	return nil
}

// Reusable pre-handler flood gate. The sender of msg is gated under lim (see [throttle.Limits.For]); a throttled result has already been acted upon (warning, restriction, and the wait for the window to re-open) by the time this returns.
func (eng *Engine) ThrottleGate(ctx context.Context, msg *chat.Message, lim throttle.Limit) throttle.Result {
	c := eng.NewEventContext(ctx, msg, lim.Key)
	return c.gate(lim)
}

func (c *EventContext) gate(lim throttle.Limit) throttle.Result {
	key := lim.Key
	if c.Message.Chat != nil && c.Message.From != nil {
		key = throttle.SenderKey(lim.Key, c.Message.Chat.ID, c.Message.From.ID)
	}
	if lim.Rate <= 0 {
		return throttle.Result{Key: key, Accepted: true}
	}
	res := c.engine.Throttle.Check(key, lim.Rate)
	if !res.Accepted {
		c.onThrottled(res)
	}
	return res
}

// Notifies on the first exceeds only, then waits out the window.
func (c *EventContext) onThrottled(res throttle.Result) {
	eng := c.engine
	throttledCount.WithLabelValues(c.Handler).Inc()
	c.Logger.Debug("message throttled", "key", res.Key, "exceeded", res.ExceededCount, "wait", res.WaitRemaining)

	if res.ExceededCount <= 2 && c.Message.From != nil {
		c.Restrict(c.Message.From.ID, eng.Config.FloodMuteTime)
		c.Reply(FloodLockMessage, nil)
	}

	if err := eng.sleep(c.Ctx, res.WaitRemaining); err != nil {
		return
	}

	// An "unlocked" notice could be sent here when this was the last exceed for the key. It stays off: announcing the unlock invites the next burst.
	if cur, ok := eng.Throttle.Peek(res.Key); ok {
		c.Logger.Debug("flood window re-opened", "key", res.Key, "exceeded", cur.ExceededCount)
	}
}

// Admin check with a fresh event context; see [EventContext.IsAdmin].
func (eng *Engine) IsAdmin(ctx context.Context, user *chat.User, ch *chat.Chat) bool {
	c := eng.NewEventContext(ctx, &chat.Message{From: user, Chat: ch}, "admin-check")
	return c.IsAdmin(user, ch)
}
