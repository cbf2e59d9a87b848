package telegram

import (
	"net/http"
	"strings"
	"time"

	"github.com/truemoder/truemoder/automod/chat"
)

// Bot API failures are only distinguishable by description text. Matching is confined to this function: everything past the transport boundary branches on [chat.ErrorKind].
func kindFor(code int, description string) chat.ErrorKind {
	desc := strings.ToLower(description)
	switch {
	case code == http.StatusTooManyRequests:
		return chat.KindRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return chat.KindUnauthorized
	case strings.Contains(desc, "message to delete not found"):
		return chat.KindMessageNotFound
	case strings.Contains(desc, "can't demote chat creator"),
		strings.Contains(desc, "can't remove chat owner"),
		strings.Contains(desc, "can't restrict chat owner"):
		return chat.KindTargetIsCreator
	case strings.Contains(desc, "is an administrator of the chat"):
		return chat.KindTargetIsAdmin
	case strings.Contains(desc, "not enough rights"),
		strings.Contains(desc, "need administrator rights"),
		strings.Contains(desc, "chat_admin_required"),
		strings.Contains(desc, "message can't be deleted"):
		return chat.KindNotEnoughRights
	default:
		return chat.KindGeneric
	}
}

func errorFromResponse(statusCode int, resp *Response) *chat.Error {
	code := resp.ErrorCode
	if code == 0 {
		code = statusCode
	}
	e := &chat.Error{
		Kind:        kindFor(code, resp.Description),
		Code:        code,
		Description: resp.Description,
	}
	if resp.Parameters != nil && resp.Parameters.RetryAfter > 0 {
		e.RetryAfter = time.Duration(resp.Parameters.RetryAfter) * time.Second
	}
	return e
}
