package chat

import (
	"errors"
	"fmt"
	"time"
)

type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	// the remote side asks to slow down; see [Error.RetryAfter]
	KindRateLimited
	// credentials were rejected, or the bot was removed from (or blocked in) the chat
	KindUnauthorized
	// the bot lacks the administrator right needed for the call
	KindNotEnoughRights
	// target member is an administrator of the chat
	KindTargetIsAdmin
	// target member is the chat creator
	KindTargetIsCreator
	// message is already gone, or can no longer be deleted
	KindMessageNotFound
)

var kindNames = map[ErrorKind]string{
	KindGeneric:         "generic",
	KindRateLimited:     "rate-limited",
	KindUnauthorized:    "unauthorized",
	KindNotEnoughRights: "not-enough-rights",
	KindTargetIsAdmin:   "target-is-admin",
	KindTargetIsCreator: "target-is-creator",
	KindMessageNotFound: "message-not-found",
}

func (k ErrorKind) String() string {
	s, ok := kindNames[k]
	if !ok {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return s
}

// Failure reported by the chat network, already classified.
type Error struct {
	Kind        ErrorKind
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *Error) Error() string {
	if e.Kind == KindRateLimited && e.RetryAfter > 0 {
		return fmt.Sprintf("chat error %d (%s): %s (retry after %s)", e.Code, e.Kind, e.Description, e.RetryAfter)
	}
	return fmt.Sprintf("chat error %d (%s): %s", e.Code, e.Kind, e.Description)
}

// Returns the kind of a (possibly wrapped) [*Error]. Errors of any other type are [KindGeneric].
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindGeneric
}
