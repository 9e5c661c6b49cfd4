package telegram

import (
	"context"
	stderrors "errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	auditdomain "github.com/reshetovitsme/tg-moderation-relay/internal/modules/audit/domain"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/moderation/domain"
	settingsdomain "github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/domain"
	"github.com/reshetovitsme/tg-moderation-relay/internal/shared/errors"
	"github.com/samber/oops"
)

const (
	memberCacheSize = 4096
	memberCacheTTL  = time.Minute
)

type memberKey struct {
	chatID int64
	userID int64
}

// Platform performs moderation actions through the Bot API. Telegram
// permission errors are returned as errors.ErrForbidden.
type Platform struct {
	mu       sync.RWMutex
	bot      *bot.Bot
	botID    int64
	username string

	members *expirable.LRU[memberKey, *models.ChatMember]
}

func NewPlatform() *Platform {
	return &Platform{
		members: expirable.NewLRU[memberKey, *models.ChatMember](memberCacheSize, nil, memberCacheTTL),
	}
}

// SetBot attaches the bot once it has been created.
func (p *Platform) SetBot(b *bot.Bot, botID int64, username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bot = b
	p.botID = botID
	p.username = username
}

// Username is the bot's @username without the @, empty until SetBot.
func (p *Platform) Username() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.username
}

func (p *Platform) client() (*bot.Bot, int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.bot == nil {
		return nil, 0, errors.ErrBotNotReady
	}
	return p.bot, p.botID, nil
}

// CanMute reports whether the bot may restrict members of the group.
func (p *Platform) CanMute(ctx context.Context, guildID int64) (bool, error) {
	_, botID, err := p.client()
	if err != nil {
		return false, err
	}
	m, err := p.chatMember(ctx, guildID, botID)
	if err != nil {
		return false, err
	}
	switch m.Type {
	case models.ChatMemberTypeOwner:
		return true, nil
	case models.ChatMemberTypeAdministrator:
		return m.Administrator != nil && m.Administrator.CanRestrictMembers, nil
	}
	return false, nil
}

// Mute revokes every send permission until the given time. The Bot API has
// no field for a reason, so it is only logged.
func (p *Platform) Mute(ctx context.Context, guildID, userID int64, until time.Time, reason string) error {
	b, _, err := p.client()
	if err != nil {
		return err
	}

	_, err = b.RestrictChatMember(ctx, &bot.RestrictChatMemberParams{
		ChatID:      guildID,
		UserID:      userID,
		Permissions: &models.ChatPermissions{},
		UntilDate:   int(until.Unix()),
	})
	if err != nil {
		return translate(err, "restrictChatMember", "chat_id", guildID, "user_id", userID)
	}

	p.members.Remove(memberKey{guildID, userID})
	slog.Debug("Restricted chat member", "chat_id", guildID, "user_id", userID, "until", until, "reason", reason)
	return nil
}

// SendDirect messages a user privately. It fails with errors.ErrForbidden
// when the user has never started the bot or has blocked it.
func (p *Platform) SendDirect(ctx context.Context, userID int64, text string) error {
	b, _, err := p.client()
	if err != nil {
		return err
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	})
	if err != nil {
		return translate(err, "sendMessage", "user_id", userID)
	}
	return nil
}

// CanPostTo reports whether the bot may send messages to the chat.
func (p *Platform) CanPostTo(ctx context.Context, chatID int64) (bool, error) {
	_, botID, err := p.client()
	if err != nil {
		return false, err
	}
	m, err := p.chatMember(ctx, chatID, botID)
	if err != nil {
		if stderrors.Is(err, errors.ErrForbidden) {
			return false, nil
		}
		return false, err
	}
	switch m.Type {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator, models.ChatMemberTypeMember:
		return true, nil
	case models.ChatMemberTypeRestricted:
		return m.Restricted != nil && m.Restricted.IsMember && m.Restricted.CanSendMessages, nil
	}
	return false, nil
}

// PostAudit sends an audit record to the log chat.
func (p *Platform) PostAudit(ctx context.Context, chatID int64, record auditdomain.Record) error {
	b, _, err := p.client()
	if err != nil {
		return err
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      formatAudit(record),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return translate(err, "sendMessage", "chat_id", chatID)
	}
	return nil
}

// Membership returns the member's standing in the group, or nil when the
// user is not a current member.
func (p *Platform) Membership(ctx context.Context, chatID, userID int64) (*domain.Member, error) {
	m, err := p.chatMember(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	role, ok := memberRole(m)
	if !ok {
		return nil, nil
	}
	return &domain.Member{Roles: []int64{int64(role)}}, nil
}

// CanManage reports whether the user may change the group settings.
func (p *Platform) CanManage(ctx context.Context, chatID, userID int64) (bool, error) {
	m, err := p.chatMember(ctx, chatID, userID)
	if err != nil {
		return false, err
	}
	switch m.Type {
	case models.ChatMemberTypeOwner:
		return true, nil
	case models.ChatMemberTypeAdministrator:
		return m.Administrator != nil && m.Administrator.CanChangeInfo, nil
	}
	return false, nil
}

// CheckPermissions logs a warning for every configured feature the bot
// lacks the rights to perform.
func (p *Platform) CheckPermissions(ctx context.Context, settings settingsdomain.Settings) {
	slog.Info("Performing initial permission checks...")

	if settings.TargetServerID != 0 {
		canMute, err := p.CanMute(ctx, settings.TargetServerID)
		switch {
		case err != nil:
			slog.Warn("Could not check mute permission in target group", "chat_id", settings.TargetServerID, "error", err)
		case !canMute:
			slog.Warn("Bot lacks 'Ban users' permission in target group. Mute functionality will fail.", "chat_id", settings.TargetServerID)
		}
	} else {
		slog.Info("No target group configured, mute permission is checked per group when needed")
	}

	if settings.LogChannelConfigured() {
		canPost, err := p.CanPostTo(ctx, settings.LogChannelID)
		switch {
		case err != nil:
			slog.Warn("Could not check log channel permission. Logging may fail.", "chat_id", settings.LogChannelID, "error", err)
		case !canPost:
			slog.Warn("Bot lacks permission to send messages in configured log channel. Logging will fail.", "chat_id", settings.LogChannelID)
		}
	} else {
		slog.Info("Log channel not configured. Logging will be skipped.")
	}

	slog.Info("Initial permission checks completed.")
}

func (p *Platform) chatMember(ctx context.Context, chatID, userID int64) (*models.ChatMember, error) {
	key := memberKey{chatID, userID}
	if m, ok := p.members.Get(key); ok {
		return m, nil
	}

	b, _, err := p.client()
	if err != nil {
		return nil, err
	}
	m, err := b.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: chatID, UserID: userID})
	if err != nil {
		return nil, translate(err, "getChatMember", "chat_id", chatID, "user_id", userID)
	}

	p.members.Add(key, m)
	return m, nil
}

func memberRole(m *models.ChatMember) (domain.MemberRole, bool) {
	switch m.Type {
	case models.ChatMemberTypeOwner:
		return domain.MemberRoleCreator, true
	case models.ChatMemberTypeAdministrator:
		return domain.MemberRoleAdministrator, true
	case models.ChatMemberTypeMember:
		return domain.MemberRoleMember, true
	case models.ChatMemberTypeRestricted:
		if m.Restricted != nil && m.Restricted.IsMember {
			return domain.MemberRoleRestricted, true
		}
	}
	return 0, false
}

func translate(err error, method string, attrs ...any) error {
	builder := oops.With(append([]any{"method", method}, attrs...)...)
	if stderrors.Is(err, bot.ErrorForbidden) {
		return builder.Wrapf(errors.ErrForbidden, "%v", err)
	}
	return builder.Wrap(err)
}

func formatAudit(r auditdomain.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", html.EscapeString(r.Title()))
	fmt.Fprintf(&b, "<b>User:</b> %s (ID: %d)\n", html.EscapeString(r.UserName), r.UserID)
	fmt.Fprintf(&b, "<b>Flagged Word:</b> <code>%s</code>\n", html.EscapeString(r.FlaggedWord))
	fmt.Fprintf(&b, "<b>Reason:</b> %s\n", html.EscapeString(r.Reason))
	fmt.Fprintf(&b, "<b>Timeout Duration:</b> %d minutes\n", r.DurationMinutes)
	fmt.Fprintf(&b, "<b>Channel:</b> %s (ID: %d)\n", html.EscapeString(r.ChannelName), r.ChannelID)
	fmt.Fprintf(&b, "<b>Timeout Status:</b> %s\n", r.Status())
	fmt.Fprintf(&b, "<b>Message Content:</b>\n<pre>%s</pre>\n", html.EscapeString(r.Excerpt))
	fmt.Fprintf(&b, "<i>Message ID: %d</i>", r.MessageID)
	return b.String()
}
