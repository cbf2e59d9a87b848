package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/truemoder/truemoder/automod/chat"
)

func TestClassify(t *testing.T) {
	assert := assert.New(t)
	f := EngineTestFixture()
	c := f.Engine.NewEventContext(context.Background(), textMessage(1, testUserID, ""), "test")

	fixtures := []struct {
		op   string
		err  error
		want Outcome
	}{
		{op: opSend, err: nil, want: OutcomeOK},
		{op: opDelete, err: &chat.Error{Kind: chat.KindMessageNotFound}, want: OutcomeOK},
		{op: opSend, err: &chat.Error{Kind: chat.KindMessageNotFound}, want: OutcomeFailed},
		{op: opRestrict, err: &chat.Error{Kind: chat.KindNotEnoughRights}, want: OutcomePermission},
		{op: opRestrict, err: &chat.Error{Kind: chat.KindTargetIsAdmin}, want: OutcomePermission},
		{op: opKick, err: &chat.Error{Kind: chat.KindTargetIsCreator}, want: OutcomePermission},
		{op: opSend, err: &chat.Error{Kind: chat.KindRateLimited, RetryAfter: 3 * time.Second}, want: OutcomeRateLimited},
		{op: opSend, err: &chat.Error{Kind: chat.KindUnauthorized}, want: OutcomeUnauthorized},
		{op: opSend, err: &chat.Error{Kind: chat.KindGeneric}, want: OutcomeFailed},
		{op: opSend, err: errors.New("connection reset"), want: OutcomeFailed},
	}
	for _, fix := range fixtures {
		assert.Equal(fix.want, c.classify(fix.op, fix.err), "%s: %v", fix.op, fix.err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	assert := assert.New(t)
	f := EngineTestFixture()
	c := f.Engine.NewEventContext(context.Background(), textMessage(1, testUserID, ""), "test")

	f.Client.SetError(opDelete, &chat.Error{Kind: chat.KindMessageNotFound, Code: 400, Description: "Bad Request: message to delete not found"})
	assert.Equal(OutcomeOK, c.Delete(1))
	assert.Equal(OutcomeOK, c.Delete(1))
	assert.Len(f.Client.CallsOf(opDelete), 2)
}

func TestExecutorCalls(t *testing.T) {
	assert := assert.New(t)
	f := EngineTestFixture()
	c := f.Engine.NewEventContext(context.Background(), textMessage(5, testUserID, ""), "test")

	assert.Equal(OutcomeOK, c.Restrict(testUserID, 5*time.Minute))
	assert.Equal(OutcomeOK, c.Kick(testUserID, 24*time.Hour))
	assert.Equal(OutcomeOK, c.Reply("hello", nil))
	ref, out := c.Say(testChatID, "hi", nil)
	assert.Equal(OutcomeOK, out)
	assert.NotNil(ref)

	calls := f.Client.Calls()
	assert.Equal([]string{opRestrict, opKick, opSend, opSend}, f.Client.Ops())
	assert.Equal(f.Clock.Add(5*time.Minute), calls[0].Until)
	assert.Equal(testUserID, calls[0].UserID)
	assert.Equal(testChatID, calls[0].ChatID)
	assert.Equal(f.Clock.Add(24*time.Hour), calls[1].Until)
	assert.Equal(int64(5), calls[2].Options.ReplyTo)
	assert.True(calls[2].Options.DisableWebPagePreview)

	f.Client.SetError(opSend, &chat.Error{Kind: chat.KindUnauthorized, Code: 403})
	ref, out = c.Say(testChatID, "hi", nil)
	assert.Equal(OutcomeUnauthorized, out)
	assert.Nil(ref)
}

func TestExecutorHugeSanction(t *testing.T) {
	assert := assert.New(t)
	f := EngineTestFixture()
	c := f.Engine.NewEventContext(context.Background(), textMessage(5, testUserID, ""), "test")

	assert.Equal(OutcomeOK, c.Restrict(testUserID, time.Duration(math.MaxInt64)))
	assert.Equal(OutcomeOK, c.Kick(testUserID, 2000*24*time.Hour))
	calls := f.Client.Calls()
	assert.Equal(f.Clock.Add(MaxSanction), calls[0].Until)
	assert.Equal(f.Clock.Add(MaxSanction), calls[1].Until)
	assert.True(calls[0].Until.After(f.Clock.Add(366 * 24 * time.Hour)))
}

func TestIsAdmin(t *testing.T) {
	assert := assert.New(t)
	f := EngineTestFixture(superID)
	c := f.Engine.NewEventContext(context.Background(), textMessage(1, testUserID, ""), "test")
	f.Client.SetMember(testChatID, adminID, chat.StatusAdministrator)
	f.Client.SetMember(testChatID, 12, chat.StatusCreator)

	assert.False(c.IsAdmin(nil, testChat))
	assert.False(c.IsAdmin(&chat.User{ID: adminID}, nil))
	assert.True(c.IsAdmin(&chat.User{ID: adminID}, testChat))
	assert.True(c.IsAdmin(&chat.User{ID: 12}, testChat))
	assert.False(c.IsAdmin(&chat.User{ID: testUserID}, testChat))
	assert.Len(f.Client.CallsOf(opGetMember), 3)

	// admins are served from the cache, non-admins are looked up again
	assert.True(c.IsAdmin(&chat.User{ID: adminID}, testChat))
	assert.False(c.IsAdmin(&chat.User{ID: testUserID}, testChat))
	assert.Len(f.Client.CallsOf(opGetMember), 4)

	f.Client.SetMember(testChatID, testUserID, chat.StatusAdministrator)
	assert.True(c.IsAdmin(&chat.User{ID: testUserID}, testChat))
	assert.True(c.IsAdmin(&chat.User{ID: testUserID}, testChat))
	assert.Len(f.Client.CallsOf(opGetMember), 5)
}

func TestIsAdminSuperAdmin(t *testing.T) {
	assert := assert.New(t)
	f := EngineTestFixture(superID)
	f.Client.SetError(opGetMember, &chat.Error{Kind: chat.KindGeneric, Code: 500, Description: "Internal Server Error"})

	assert.True(f.Engine.IsAdmin(context.Background(), &chat.User{ID: superID}, testChat))
	// super-admins don't even need a chat
	assert.True(f.Engine.IsAdmin(context.Background(), &chat.User{ID: superID}, nil))
	assert.Empty(f.Client.CallsOf(opGetMember))

	// lookup failure means "not admin" for everybody else
	assert.False(f.Engine.IsAdmin(context.Background(), &chat.User{ID: adminID}, testChat))
	assert.Len(f.Client.CallsOf(opGetMember), 1)
}
