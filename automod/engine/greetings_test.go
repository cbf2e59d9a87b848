package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truemoder/truemoder/automod/chat"
)

func TestHandleMedia(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	f := EngineTestFixture(superID)

	sticker := textMessage(1, testUserID, "")
	sticker.ContentType = chat.ContentSticker
	assert.NoError(f.Engine.HandleMedia(ctx, sticker))
	assert.Equal([]string{opDelete}, f.Client.Ops())

	f.Client.Reset()
	fromSuper := textMessage(2, superID, "")
	fromSuper.ContentType = chat.ContentPhoto
	assert.NoError(f.Engine.HandleMedia(ctx, fromSuper))

	text := textMessage(3, testUserID, "hi")
	assert.NoError(f.Engine.HandleMedia(ctx, text))

	inGroup := textMessage(4, testUserID, "")
	inGroup.ContentType = chat.ContentVideo
	inGroup.Chat = &chat.Chat{ID: 5, Type: chat.ChatGroup}
	assert.NoError(f.Engine.HandleMedia(ctx, inGroup))
	assert.Empty(f.Client.Calls())
}

func TestHandleNewMembers(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	f := EngineTestFixture()

	msg := &chat.Message{
		ID:             1,
		Chat:           testChat,
		ContentType:    chat.ContentNewChatMembers,
		NewChatMembers: []chat.User{{ID: 5}},
	}
	require.NoError(f.Engine.HandleNewMembers(ctx, msg))
	assert.Empty(f.Client.Calls())

	msg.NewChatMembers = append(msg.NewChatMembers, chat.User{ID: 42, IsBot: true})
	require.NoError(f.Engine.HandleNewMembers(ctx, msg))
	calls := f.Client.CallsOf(opSend)
	require.Len(calls, 1)
	assert.Equal(WelcomeMessage, calls[0].Text)
	require.NotNil(calls[0].Options.Markup)
	assert.Equal("https://example.com/faq", calls[0].Options.Markup.InlineKeyboard[0][0].URL)
	assert.Equal([]time.Duration{2 * time.Second}, f.Sleeps())

	f.Client.Reset()
	msg.Chat = &chat.Chat{ID: 6, Type: chat.ChatGroup}
	require.NoError(f.Engine.HandleNewMembers(ctx, msg))
	calls = f.Client.CallsOf(opSend)
	require.Len(calls, 1)
	assert.Equal(GroupOnlyMessage, calls[0].Text)
	assert.Equal(int64(6), calls[0].ChatID)
}

func TestHandleMigration(t *testing.T) {
	assert := assert.New(t)
	f := EngineTestFixture()

	msg := &chat.Message{ID: 1, Chat: testChat, ContentType: chat.ContentMigrateFrom, MigrateFromChatID: -5}
	assert.NoError(f.Engine.HandleMigration(context.Background(), msg))
	calls := f.Client.CallsOf(opSend)
	assert.Len(calls, 1)
	assert.Equal(MigratedMessage, calls[0].Text)
	assert.Equal(MigratedButton, calls[0].Options.Markup.InlineKeyboard[0][0].Text)
}

func TestHandleStart(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	f := EngineTestFixture()

	msg := textMessage(1, testUserID, "/start")
	assert.NoError(f.Engine.HandleStart(ctx, msg))
	assert.Empty(f.Client.Calls())

	msg.Chat = &chat.Chat{ID: testUserID, Type: chat.ChatPrivate, FirstName: "Вася"}
	assert.NoError(f.Engine.HandleStart(ctx, msg))
	calls := f.Client.CallsOf(opSend)
	assert.Len(calls, 1)
	assert.Equal(StartMessage, calls[0].Text)
	assert.Equal("https://telegram.me/truemoder_bot?startgroup=true", calls[0].Options.Markup.InlineKeyboard[0][0].URL)
}
