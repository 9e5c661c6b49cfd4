package telegram

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/moderation/domain"
)

// MembershipLookup resolves a user's standing in a group.
type MembershipLookup interface {
	Membership(ctx context.Context, chatID, userID int64) (*domain.Member, error)
}

// GuildScope tells which groups are moderated.
type GuildScope interface {
	MonitorsGuild(guildID int64) bool
}

func isGroup(chat models.Chat) bool {
	return chat.Type == models.ChatTypeGroup || chat.Type == models.ChatTypeSupergroup
}

// toMessage converts a Telegram message into the moderation view of it.
// Messages without text or without a sender are skipped. Membership is only
// looked up for human authors in monitored groups.
func toMessage(ctx context.Context, members MembershipLookup, scope GuildScope, msg *models.Message) (domain.Message, bool) {
	if msg == nil || msg.From == nil {
		return domain.Message{}, false
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if strings.TrimSpace(text) == "" {
		return domain.Message{}, false
	}

	out := domain.Message{
		ID:          int64(msg.ID),
		ChannelID:   msg.Chat.ID,
		ChannelName: chatName(msg.Chat),
		Text:        text,
		SentAt:      time.Unix(int64(msg.Date), 0).UTC(),
		Author: domain.Author{
			ID:          msg.From.ID,
			DisplayName: displayName(msg.From),
			IsBot:       msg.From.IsBot || msg.SenderChat != nil,
		},
	}

	if !isGroup(msg.Chat) {
		return out, true
	}

	out.GuildID = msg.Chat.ID
	out.GuildName = msg.Chat.Title

	if out.Author.IsBot || !scope.MonitorsGuild(out.GuildID) {
		return out, true
	}

	member, err := members.Membership(ctx, msg.Chat.ID, msg.From.ID)
	if err != nil {
		slog.Warn("Could not look up chat membership, treating author as non-member",
			"chat_id", msg.Chat.ID, "user_id", msg.From.ID, "error", err)
	}
	out.Author.Member = member

	return out, true
}

func displayName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "Unknown"
}

func chatName(chat models.Chat) string {
	switch {
	case chat.Title != "":
		return chat.Title
	case chat.Username != "":
		return "@" + chat.Username
	}
	return "private chat"
}
