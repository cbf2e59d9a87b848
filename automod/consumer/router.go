// Update intake and dispatch: receives chat updates (long polling or webhook), fans them out over a bounded worker pool, and routes each message to the matching engine entry point.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/truemoder/truemoder/automod/chat"
	"github.com/truemoder/truemoder/automod/engine"
	"github.com/truemoder/truemoder/telegram"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("consumer")

// text triggers, in addition to the slash commands
var (
	banTrigger  = regexp.MustCompile(`^!.*бан.*`)
	muteTrigger = regexp.MustCompile(`^!.*мол[чк].*`)
)

type Router struct {
	Engine *engine.Engine
	Logger *slog.Logger
	// bot username, with or without the leading "@"; commands addressed to other bots ("/ban@other_bot") are ignored
	BotName string
}

// Recognizes moderation commands: "/ban", "/mute" (optionally addressed as "/ban@bot"), and "!"-prefixed text triggers.
func (r *Router) CommandFor(text string) (engine.CommandKind, bool) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		first := strings.Fields(text)[0]
		name, addressee, addressed := strings.Cut(strings.TrimPrefix(first, "/"), "@")
		if addressed && !strings.EqualFold(addressee, strings.TrimPrefix(r.BotName, "@")) {
			return 0, false
		}
		switch strings.ToLower(name) {
		case "ban":
			return engine.CommandBan, true
		case "mute":
			return engine.CommandMute, true
		}
		return 0, false
	}
	lower := strings.ToLower(text)
	switch {
	case banTrigger.MatchString(lower):
		return engine.CommandBan, true
	case muteTrigger.MatchString(lower):
		return engine.CommandMute, true
	}
	return 0, false
}

func isStartCommand(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return name == "/start" || name == "/help"
}

// Handles a single update. Panics are recovered and reported as errors, so one bad update never takes down a worker.
func (r *Router) HandleUpdate(ctx context.Context, upd *telegram.Update) (err error) {
	ctx, span := tracer.Start(ctx, "HandleUpdate",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.Int64("update_id", upd.UpdateID)),
	)
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic handling update %d: %v", upd.UpdateID, rec)
		}
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			r.logError(upd, err)
		}
	}()

	if upd.Message == nil {
		return nil
	}
	msg := upd.Message.ToChat()
	span.SetAttributes(attribute.Int64("chat", msg.Chat.ID), attribute.String("content_type", string(msg.ContentType)))
	return r.Route(ctx, msg)
}

// Dispatches a message to the engine entry point for its chat and content type.
func (r *Router) Route(ctx context.Context, msg *chat.Message) error {
	if msg == nil || msg.Chat == nil {
		return nil
	}
	eng := r.Engine

	if msg.Chat.Type == chat.ChatPrivate {
		if msg.ContentType == chat.ContentText && isStartCommand(msg.Text) {
			return eng.HandleStart(ctx, msg)
		}
		return nil
	}
	if msg.Chat.Type != chat.ChatGroup && msg.Chat.Type != chat.ChatSupergroup {
		return nil
	}

	switch {
	case msg.ContentType == chat.ContentNewChatMembers:
		return eng.HandleNewMembers(ctx, msg)
	case msg.ContentType == chat.ContentMigrateFrom:
		return eng.HandleMigration(ctx, msg)
	case msg.ContentType.IsMedia():
		return eng.HandleMedia(ctx, msg)
	case msg.ContentType == chat.ContentText:
		if kind, ok := r.CommandFor(msg.Text); ok {
			if msg.From == nil {
				return nil
			}
			res := eng.ThrottleGate(ctx, msg, eng.Config.Limits.For(kind.Handler()))
			if !res.Accepted {
				return nil
			}
			return eng.HandleCommand(ctx, msg, kind)
		}
		return eng.HandleIncomingText(ctx, msg)
	}
	return nil
}

// Logs an update handling failure at the level its kind calls for.
func (r *Router) logError(upd *telegram.Update, err error) {
	kind := chat.KindOf(err)
	updateErrors.WithLabelValues(kind.String()).Inc()
	logger := r.Logger.With("update", upd.UpdateID, "kind", kind.String(), "err", err)
	switch kind {
	case chat.KindTargetIsCreator, chat.KindMessageNotFound:
		logger.Debug("update handling failed")
	case chat.KindUnauthorized:
		logger.Info("update handling failed")
	default:
		logger.Error("update handling failed")
	}
}
