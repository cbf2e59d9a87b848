package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert := assert.New(t)

	err := &Error{Kind: KindMessageNotFound, Code: 400, Description: "message to delete not found"}
	assert.Equal(KindMessageNotFound, KindOf(err))
	assert.Equal(KindMessageNotFound, KindOf(fmt.Errorf("deleting: %w", err)))
	assert.Equal(KindGeneric, KindOf(fmt.Errorf("connection reset")))
	assert.Equal(KindGeneric, KindOf(nil))

	rl := &Error{Kind: KindRateLimited, Code: 429, Description: "Too Many Requests", RetryAfter: 5 * time.Second}
	assert.Contains(rl.Error(), "retry after 5s")
	assert.Equal("rate-limited", KindRateLimited.String())
}

func TestNames(t *testing.T) {
	assert := assert.New(t)

	u := &User{ID: 42, FirstName: "Иван", LastName: "Петров"}
	assert.Equal("Иван Петров", u.FullName())
	assert.Equal("Иван Петров (42)", u.LogRepr())

	u2 := &User{ID: 7, FirstName: "solo"}
	assert.Equal("solo", u2.FullName())

	var nilUser *User
	assert.Equal("<nil user>", nilUser.LogRepr())

	c := &Chat{ID: -100, Title: "Флудилка"}
	assert.Equal("Флудилка (-100)", c.LogRepr())
}

func TestMediaTypes(t *testing.T) {
	assert := assert.New(t)

	assert.True(ContentSticker.IsMedia())
	assert.True(ContentAnimation.IsMedia())
	assert.False(ContentText.IsMedia())
	assert.False(ContentNewChatMembers.IsMedia())

	m := MemberInfo{Status: StatusCreator}
	assert.True(m.IsAdmin())
	m.Status = StatusRestricted
	assert.False(m.IsAdmin())
}
