package telegram

import (
	"encoding/json"
	"time"

	"github.com/truemoder/truemoder/automod/chat"
)

// Response envelope shared by all Bot API methods.
type Response struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Description string              `json:"description,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

type ResponseParameters struct {
	RetryAfter      int   `json:"retry_after,omitempty"`
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Subset of the Message object. Media payloads are kept raw: only their presence matters.
type Message struct {
	MessageID         int64           `json:"message_id"`
	From              *User           `json:"from,omitempty"`
	Chat              Chat            `json:"chat"`
	Date              int64           `json:"date"`
	Text              string          `json:"text,omitempty"`
	ReplyToMessage    *Message        `json:"reply_to_message,omitempty"`
	NewChatMembers    []User          `json:"new_chat_members,omitempty"`
	MigrateFromChatID int64           `json:"migrate_from_chat_id,omitempty"`
	Animation         json.RawMessage `json:"animation,omitempty"`
	Sticker           json.RawMessage `json:"sticker,omitempty"`
	VideoNote         json.RawMessage `json:"video_note,omitempty"`
	Video             json.RawMessage `json:"video,omitempty"`
	Document          json.RawMessage `json:"document,omitempty"`
	Contact           json.RawMessage `json:"contact,omitempty"`
	Photo             json.RawMessage `json:"photo,omitempty"`
	Game              json.RawMessage `json:"game,omitempty"`
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type ChatMember struct {
	Status string `json:"status"`
	User   User   `json:"user"`
}

type ChatPermissions struct {
	CanSendMessages       bool `json:"can_send_messages"`
	CanSendMediaMessages  bool `json:"can_send_media_messages"`
	CanSendOtherMessages  bool `json:"can_send_other_messages"`
	CanAddWebPagePreviews bool `json:"can_add_web_page_previews"`
}

type InlineKeyboardButton struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

func (m *Message) ContentType() chat.ContentType {
	switch {
	case m.Text != "":
		return chat.ContentText
	// animations also carry a "document" field
	case len(m.Animation) > 0:
		return chat.ContentAnimation
	case len(m.Sticker) > 0:
		return chat.ContentSticker
	case len(m.VideoNote) > 0:
		return chat.ContentVideoNote
	case len(m.Video) > 0:
		return chat.ContentVideo
	case len(m.Document) > 0:
		return chat.ContentDocument
	case len(m.Contact) > 0:
		return chat.ContentContact
	case len(m.Photo) > 0:
		return chat.ContentPhoto
	case len(m.Game) > 0:
		return chat.ContentGame
	case len(m.NewChatMembers) > 0:
		return chat.ContentNewChatMembers
	case m.MigrateFromChatID != 0:
		return chat.ContentMigrateFrom
	default:
		return chat.ContentOther
	}
}

func (u *User) ToChat() *chat.User {
	if u == nil {
		return nil
	}
	return &chat.User{
		ID:        u.ID,
		IsBot:     u.IsBot,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
	}
}

func (c *Chat) ToChat() *chat.Chat {
	return &chat.Chat{
		ID:        c.ID,
		Type:      chat.ChatType(c.Type),
		Title:     c.Title,
		Username:  c.Username,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}
}

// Converts to the transport-agnostic message type. The replied-to message is converted one level deep.
func (m *Message) ToChat() *chat.Message {
	if m == nil {
		return nil
	}
	out := m.toChat()
	if m.ReplyToMessage != nil {
		out.ReplyTo = m.ReplyToMessage.toChat()
	}
	return out
}

func (m *Message) toChat() *chat.Message {
	out := &chat.Message{
		ID:                m.MessageID,
		From:              m.From.ToChat(),
		Chat:              m.Chat.ToChat(),
		Date:              time.Unix(m.Date, 0),
		Text:              m.Text,
		ContentType:       m.ContentType(),
		MigrateFromChatID: m.MigrateFromChatID,
	}
	for _, u := range m.NewChatMembers {
		out.NewChatMembers = append(out.NewChatMembers, *u.ToChat())
	}
	return out
}

func markupFromChat(m *chat.Markup) *InlineKeyboardMarkup {
	if m == nil {
		return nil
	}
	out := &InlineKeyboardMarkup{}
	for _, row := range m.InlineKeyboard {
		var r []InlineKeyboardButton
		for _, b := range row {
			r = append(r, InlineKeyboardButton{Text: b.Text, URL: b.URL})
		}
		out.InlineKeyboard = append(out.InlineKeyboard, r)
	}
	return out
}
