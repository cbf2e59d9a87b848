// Transport-agnostic types for group chats, and the capability interface which the moderation engine uses to act on them.
//
// The engine never talks to a chat network directly: everything goes through a [Client] injected at construction. Implementations translate their own failure modes into [Error] values carrying an [ErrorKind], so that callers can branch on structured kinds rather than on error text.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type ChatType string

const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSupergroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

type ContentType string

const (
	ContentText           ContentType = "text"
	ContentSticker        ContentType = "sticker"
	ContentVideoNote      ContentType = "video_note"
	ContentVideo          ContentType = "video"
	ContentDocument       ContentType = "document"
	ContentContact        ContentType = "contact"
	ContentPhoto          ContentType = "photo"
	ContentGame           ContentType = "game"
	ContentAnimation      ContentType = "animation"
	ContentNewChatMembers ContentType = "new_chat_members"
	ContentMigrateFrom    ContentType = "migrate_from_chat_id"
	ContentOther          ContentType = "other"
)

// Content types which are removed from supergroups when posted by anybody except a super-admin.
var MediaContentTypes = []ContentType{
	ContentSticker,
	ContentVideoNote,
	ContentVideo,
	ContentDocument,
	ContentContact,
	ContentPhoto,
	ContentGame,
	ContentAnimation,
}

func (ct ContentType) IsMedia() bool {
	for _, m := range MediaContentTypes {
		if ct == m {
			return true
		}
	}
	return false
}

type User struct {
	ID        int64
	IsBot     bool
	FirstName string
	LastName  string
	Username  string
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Compact "name (id)" rendering, for log lines.
func (u *User) LogRepr() string {
	if u == nil {
		return "<nil user>"
	}
	return fmt.Sprintf("%s (%d)", u.FullName(), u.ID)
}

type Chat struct {
	ID        int64
	Type      ChatType
	Title     string
	Username  string
	FirstName string
	LastName  string
}

func (c *Chat) FullName() string {
	if c.Title != "" {
		return c.Title
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c *Chat) LogRepr() string {
	if c == nil {
		return "<nil chat>"
	}
	return fmt.Sprintf("%s (%d)", c.FullName(), c.ID)
}

// Immutable view of a single incoming message.
type Message struct {
	ID          int64
	From        *User
	Chat        *Chat
	Date        time.Time
	Text        string
	ContentType ContentType
	// Message this one replies to, if any. Only one level deep.
	ReplyTo           *Message
	NewChatMembers    []User
	MigrateFromChatID int64
}

// Reference to a message which was sent through a [Client].
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

type MemberInfo struct {
	User   User
	Status MemberStatus
}

func (m *MemberInfo) IsAdmin() bool {
	return m.Status == StatusCreator || m.Status == StatusAdministrator
}

// What a restricted member is still allowed to do. The zero value forbids everything.
type Permissions struct {
	CanSendMessages       bool
	CanSendMediaMessages  bool
	CanSendOtherMessages  bool
	CanAddWebPagePreviews bool
}

type Button struct {
	Text string
	URL  string
}

type Markup struct {
	InlineKeyboard [][]Button
}

// Single-button keyboard helper.
func LinkMarkup(text, url string) *Markup {
	return &Markup{InlineKeyboard: [][]Button{{{Text: text, URL: url}}}}
}

type SendOptions struct {
	ReplyTo               int64
	Markup                *Markup
	DisableWebPagePreview bool
}

// Capability interface for acting on a chat network.
//
// Implementations must return a [*Error] for failures reported by the remote side; any other error is treated as a generic failure.
type Client interface {
	Send(ctx context.Context, chatID int64, text string, opts *SendOptions) (*MessageRef, error)
	RestrictUntil(ctx context.Context, chatID, userID int64, until time.Time, perms Permissions) error
	KickUntil(ctx context.Context, chatID, userID int64, until time.Time) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	GetChatMember(ctx context.Context, chatID, userID int64) (*MemberInfo, error)
}
