package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/truemoder/truemoder/automod/chat"
	"github.com/truemoder/truemoder/automod/duration"
)

type CommandKind int

const (
	CommandBan CommandKind = iota
	CommandMute
)

func (k CommandKind) String() string {
	switch k {
	case CommandBan:
		return "ban"
	case CommandMute:
		return "mute"
	default:
		return "unknown"
	}
}

// Handler name used for the command's throttle limit and metrics.
func (k CommandKind) Handler() string {
	return "cmd_" + k.String()
}

func (eng *Engine) misusePenalty(kind CommandKind) time.Duration {
	if kind == CommandBan {
		return eng.Config.BanMisusePenalty
	}
	return eng.Config.MuteMisusePenalty
}

// Handles an admin "ban" or "mute" command. The command must be a reply to the offending message; the sanction length is read from the command text.
//
// Non-admins invoking a command get their message deleted and are restricted themselves.
func (eng *Engine) HandleCommand(ctx context.Context, msg *chat.Message, kind CommandKind) error {
	if msg == nil || msg.Chat == nil || msg.From == nil {
		return fmt.Errorf("incomplete command message")
	}
	handler := kind.Handler()
	defer eng.recoverHandler(handler, msg)
	start := time.Now()
	defer func() {
		eventProcessDuration.WithLabelValues(handler).Observe(time.Since(start).Seconds())
		eventProcessCount.WithLabelValues(handler).Inc()
	}()

	c := eng.NewEventContext(ctx, msg, handler)
	c.Logger = c.Logger.With("command", kind.String())

	if !c.IsAdmin(msg.From, msg.Chat) {
		commandMisuseCount.WithLabelValues(kind.String()).Inc()
		c.Logger.Info("command used by non-admin")
		c.Delete(msg.ID)
		c.Restrict(msg.From.ID, eng.misusePenalty(kind))
		return nil
	}

	target := msg.ReplyTo
	if target == nil || target.From == nil {
		c.Logger.Info("command used without a reply target")
		c.Reply(ReplyRequiredMessage, nil)
		return nil
	}

	d := eng.Parser.Parse(msg.Text)
	c.Logger = c.Logger.With("target", target.From.ID, "duration", d.DisplayText)

	var out Outcome
	switch kind {
	case CommandBan:
		out = c.Kick(target.From.ID, d.Std())
	case CommandMute:
		out = c.Restrict(target.From.ID, d.Std())
	default:
		return fmt.Errorf("unknown command kind: %d", kind)
	}

	switch out {
	case OutcomeOK:
		c.Logger.Info("command sanction applied",
			"admin", msg.From.LogRepr(), "user", target.From.LogRepr(), "chat_name", msg.Chat.LogRepr())
		c.Reply(DoneMessage, nil)
		if kind == CommandBan {
			c.notify(Sanction{
				Chat:     *msg.Chat,
				User:     *target.From,
				Admin:    msg.From,
				Action:   kind.String(),
				Source:   "command",
				Duration: d.Std(),
				Display:  d.DisplayText,
			})
		}
	case OutcomePermission:
		c.Reply(CantSanctionMessage, nil)
	default:
		// already logged by the executor
	}

	if duration.HasDeleteFlag(msg.Text) {
		c.Delete(target.ID)
	}
	return nil
}
