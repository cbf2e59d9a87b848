package telegram

import (
	"context"
	"time"

	"github.com/truemoder/truemoder/automod/chat"
)

var _ chat.Client = (*Client)(nil)

type sendMessageParams struct {
	ChatID                int64                 `json:"chat_id"`
	Text                  string                `json:"text"`
	ParseMode             string                `json:"parse_mode,omitempty"`
	ReplyToMessageID      int64                 `json:"reply_to_message_id,omitempty"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview,omitempty"`
}

type restrictParams struct {
	ChatID      int64           `json:"chat_id"`
	UserID      int64           `json:"user_id"`
	Permissions ChatPermissions `json:"permissions"`
	UntilDate   int64           `json:"until_date"`
}

type banParams struct {
	ChatID    int64 `json:"chat_id"`
	UserID    int64 `json:"user_id"`
	UntilDate int64 `json:"until_date"`
}

type messageParams struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

type memberParams struct {
	ChatID int64 `json:"chat_id"`
	UserID int64 `json:"user_id"`
}

type getUpdatesParams struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates"`
}

type setWebhookParams struct {
	URL            string   `json:"url"`
	SecretToken    string   `json:"secret_token,omitempty"`
	AllowedUpdates []string `json:"allowed_updates"`
}

// Sends an HTML-formatted message.
func (c *Client) Send(ctx context.Context, chatID int64, text string, opts *chat.SendOptions) (*chat.MessageRef, error) {
	p := sendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}
	if opts != nil {
		p.ReplyToMessageID = opts.ReplyTo
		p.ReplyMarkup = markupFromChat(opts.Markup)
		p.DisableWebPagePreview = opts.DisableWebPagePreview
	}
	var out Message
	if err := c.Do(ctx, "sendMessage", p, &out); err != nil {
		return nil, err
	}
	return &chat.MessageRef{ChatID: out.Chat.ID, MessageID: out.MessageID}, nil
}

func (c *Client) RestrictUntil(ctx context.Context, chatID, userID int64, until time.Time, perms chat.Permissions) error {
	return c.Do(ctx, "restrictChatMember", restrictParams{
		ChatID: chatID,
		UserID: userID,
		Permissions: ChatPermissions{
			CanSendMessages:       perms.CanSendMessages,
			CanSendMediaMessages:  perms.CanSendMediaMessages,
			CanSendOtherMessages:  perms.CanSendOtherMessages,
			CanAddWebPagePreviews: perms.CanAddWebPagePreviews,
		},
		UntilDate: until.Unix(),
	}, nil)
}

func (c *Client) KickUntil(ctx context.Context, chatID, userID int64, until time.Time) error {
	return c.Do(ctx, "banChatMember", banParams{
		ChatID:    chatID,
		UserID:    userID,
		UntilDate: until.Unix(),
	}, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return c.Do(ctx, "deleteMessage", messageParams{ChatID: chatID, MessageID: messageID}, nil)
}

func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (*chat.MemberInfo, error) {
	var out ChatMember
	if err := c.Do(ctx, "getChatMember", memberParams{ChatID: chatID, UserID: userID}, &out); err != nil {
		return nil, err
	}
	return &chat.MemberInfo{
		User:   *out.User.ToChat(),
		Status: chat.MemberStatus(out.Status),
	}, nil
}

func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var out User
	if err := c.Do(ctx, "getMe", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Long-polls for updates with ID >= offset. The HTTP client's timeout must exceed the poll timeout.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var out []Update
	err := c.Do(ctx, "getUpdates", getUpdatesParams{
		Offset:         offset,
		Timeout:        int(timeout.Seconds()),
		AllowedUpdates: []string{"message"},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	return c.Do(ctx, "setWebhook", setWebhookParams{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: []string{"message"},
	}, nil)
}

func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.Do(ctx, "deleteWebhook", nil, nil)
}
