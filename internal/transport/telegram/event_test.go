package telegram

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/moderation/domain"
	settingsdomain "github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMembers struct {
	member *domain.Member
	err    error
	calls  int
}

func (s *stubMembers) Membership(context.Context, int64, int64) (*domain.Member, error) {
	s.calls++
	return s.member, s.err
}

func groupMessage(text string) *models.Message {
	return &models.Message{
		ID:   42,
		Date: 1767225600,
		Chat: models.Chat{ID: testGroup, Type: models.ChatTypeSupergroup, Title: "Test Group"},
		From: &models.User{ID: testUser, FirstName: "Alice", LastName: "Smith"},
		Text: text,
	}
}

func TestToMessageGroup(t *testing.T) {
	assert := assert.New(t)
	members := &stubMembers{member: &domain.Member{Roles: []int64{int64(domain.MemberRoleMember)}}}

	msg, ok := toMessage(context.Background(), members, settingsdomain.Default(), groupMessage("hello"))

	require.True(t, ok)
	assert.Equal(int64(42), msg.ID)
	assert.Equal(testGroup, msg.GuildID)
	assert.Equal("Test Group", msg.GuildName)
	assert.Equal(testGroup, msg.ChannelID)
	assert.Equal("Alice Smith", msg.Author.DisplayName)
	assert.False(msg.Author.IsBot)
	assert.True(msg.Author.IsMember())
	assert.Equal(time.Unix(1767225600, 0).UTC(), msg.SentAt)
}

func TestToMessagePrivateChatHasNoGuild(t *testing.T) {
	members := &stubMembers{}
	raw := groupMessage("hello")
	raw.Chat = models.Chat{ID: testUser, Type: models.ChatTypePrivate, Username: "alice"}

	msg, ok := toMessage(context.Background(), members, settingsdomain.Default(), raw)

	require.True(t, ok)
	assert.False(t, msg.InGuild())
	assert.Nil(t, msg.Author.Member)
	assert.Zero(t, members.calls)
	assert.Equal(t, "@alice", msg.ChannelName)
}

func TestToMessageAutomatedAuthors(t *testing.T) {
	members := &stubMembers{}

	fromBot := groupMessage("beep")
	fromBot.From.IsBot = true
	msg, ok := toMessage(context.Background(), members, settingsdomain.Default(), fromBot)
	require.True(t, ok)
	assert.True(t, msg.Author.IsBot)

	onBehalfOfChat := groupMessage("news")
	onBehalfOfChat.SenderChat = &models.Chat{ID: -100777, Type: models.ChatTypeChannel}
	msg, ok = toMessage(context.Background(), members, settingsdomain.Default(), onBehalfOfChat)
	require.True(t, ok)
	assert.True(t, msg.Author.IsBot)

	assert.Zero(t, members.calls)
}

func TestToMessageSkipsLookupOutsideTargetGroup(t *testing.T) {
	members := &stubMembers{member: &domain.Member{Roles: []int64{int64(domain.MemberRoleMember)}}}
	scope := settingsdomain.Default()
	scope.TargetServerID = -100999

	msg, ok := toMessage(context.Background(), members, scope, groupMessage("hello"))

	require.True(t, ok)
	assert.Equal(t, testGroup, msg.GuildID)
	assert.Nil(t, msg.Author.Member)
	assert.Zero(t, members.calls)

	scope.TargetServerID = testGroup
	msg, ok = toMessage(context.Background(), members, scope, groupMessage("hello"))

	require.True(t, ok)
	assert.True(t, msg.Author.IsMember())
	assert.Equal(t, 1, members.calls)
}

func TestToMessageUsesCaption(t *testing.T) {
	raw := groupMessage("")
	raw.Caption = "photo caption"

	msg, ok := toMessage(context.Background(), &stubMembers{}, settingsdomain.Default(), raw)

	require.True(t, ok)
	assert.Equal(t, "photo caption", msg.Text)
}

func TestToMessageSkipsEmpty(t *testing.T) {
	_, ok := toMessage(context.Background(), &stubMembers{}, settingsdomain.Default(), groupMessage("   "))
	assert.False(t, ok)

	noSender := groupMessage("hi")
	noSender.From = nil
	_, ok = toMessage(context.Background(), &stubMembers{}, settingsdomain.Default(), noSender)
	assert.False(t, ok)
}

func TestToMessageLookupFailureMeansNonMember(t *testing.T) {
	msg, ok := toMessage(context.Background(), &stubMembers{err: stderrors.New("timeout")}, settingsdomain.Default(), groupMessage("hi"))

	require.True(t, ok)
	assert.False(t, msg.Author.IsMember())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Bob", displayName(&models.User{FirstName: "Bob"}))
	assert.Equal(t, "@bob", displayName(&models.User{Username: "bob"}))
	assert.Equal(t, "Unknown", displayName(&models.User{}))
}
