package telegram

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/moderation/domain"
	moderationService "github.com/reshetovitsme/tg-moderation-relay/internal/modules/moderation/service"
	settingsdomain "github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/domain"
	settingsService "github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/service"
	"github.com/reshetovitsme/tg-moderation-relay/internal/shared/errors"
	"github.com/samber/lo"
)

const (
	cmdSetLogChannel    = "/set_log_channel"
	cmdSetMuteDuration  = "/set_mute_duration"
	cmdSetTargetServer  = "/set_target_server"
	cmdAddBypassRole    = "/add_bypass_role"
	cmdRemoveBypassRole = "/remove_bypass_role"
	cmdConfigStatus     = "/config_status"

	permissionDenied = "You don't have permission to use this command. You need the 'Change group info' permission."
)

// adminCommands maps each command to the most arguments it accepts.
var adminCommands = map[string]int{
	cmdSetLogChannel:    1,
	cmdSetMuteDuration:  2,
	cmdSetTargetServer:  1,
	cmdAddBypassRole:    1,
	cmdRemoveBypassRole: 1,
	cmdConfigStatus:     0,
}

type Moderator interface {
	Handle(ctx context.Context, msg domain.Message) moderationService.Result
}

// Handler connects Telegram updates to the moderation pipeline and serves
// the administrative commands.
type Handler struct {
	moderator Moderator
	settings  *settingsService.Service
	platform  *Platform
}

func New(moderator Moderator, settings *settingsService.Service, platform *Platform) *Handler {
	return &Handler{
		moderator: moderator,
		settings:  settings,
		platform:  platform,
	}
}

// RegisterCommands registers the administrative commands. A command matches
// only by its exact name, optionally addressed to this bot.
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandlerMatchFunc(h.matchCommand(cmdSetLogChannel), h.adminOnly(h.handleSetLogChannel))
	b.RegisterHandlerMatchFunc(h.matchCommand(cmdSetMuteDuration), h.adminOnly(h.handleSetMuteDuration))
	b.RegisterHandlerMatchFunc(h.matchCommand(cmdSetTargetServer), h.adminOnly(h.handleSetTargetServer))
	b.RegisterHandlerMatchFunc(h.matchCommand(cmdAddBypassRole), h.adminOnly(h.handleAddBypassRole))
	b.RegisterHandlerMatchFunc(h.matchCommand(cmdRemoveBypassRole), h.adminOnly(h.handleRemoveBypassRole))
	b.RegisterHandlerMatchFunc(h.matchCommand(cmdConfigStatus), h.adminOnly(h.handleConfigStatus))
}

// Middleware moderates every inbound message before it reaches command
// dispatch. Messages dropped by the author filters are not forwarded.
// Only a well-formed admin command from a user allowed to run it skips
// moderation.
func (h *Handler) Middleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil || h.trustedCommand(ctx, msg) {
			next(ctx, b, update)
			return
		}

		event, ok := toMessage(ctx, h.platform, h.settings.Snapshot(), msg)
		if !ok {
			next(ctx, b, update)
			return
		}

		result := h.moderator.Handle(ctx, event)
		slog.Debug("Message moderated", "chat_id", event.ChannelID, "message_id", event.ID, "outcome", result.Outcome)
		if result.Forward {
			next(ctx, b, update)
		}
	}
}

// HandleUpdate receives every update no command matched.
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message != nil {
		slog.Debug("Unhandled message", "chat_id", update.Message.Chat.ID, "message_id", update.Message.ID)
	}
}

func (h *Handler) adminOnly(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil || msg.From == nil {
			return
		}
		if !isGroup(msg.Chat) {
			h.reply(ctx, b, msg, "This command can only be used in a group chat.")
			return
		}

		allowed, err := h.platform.CanManage(ctx, msg.Chat.ID, msg.From.ID)
		if err != nil {
			slog.Error("Error checking command permission", "error", err, "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
			h.reply(ctx, b, msg, fmt.Sprintf("An error occurred: %v", err))
			return
		}
		if !allowed {
			h.reply(ctx, b, msg, permissionDenied)
			return
		}

		next(ctx, b, update)
	}
}

func (h *Handler) handleSetLogChannel(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	args := commandArgs(msg.Text)

	channelID := msg.Chat.ID
	if len(args) > 0 && args[0] != "here" {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			h.reply(ctx, b, msg, "Usage: /set_log_channel <chat_id|here>")
			return
		}
		channelID = id
	}

	old, err := h.settings.SetLogChannel(channelID)
	if err != nil {
		h.replyError(ctx, b, msg, err)
		return
	}

	h.reply(ctx, b, msg, fmt.Sprintf("Moderation log channel updated from %s to %s.",
		describeLogChannel(old), describeLogChannel(channelID)))
	slog.Info("Log channel updated", "chat_id", channelID, "by", displayName(msg.From))
}

func (h *Handler) handleSetMuteDuration(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	args := commandArgs(msg.Text)

	invalid := "Invalid arguments. Please provide two integers for min and max minutes (e.g., /set_mute_duration 30 60)."
	if len(args) != 2 {
		h.reply(ctx, b, msg, invalid)
		return
	}
	minMinutes, errMin := strconv.Atoi(args[0])
	maxMinutes, errMax := strconv.Atoi(args[1])
	if errMin != nil || errMax != nil {
		h.reply(ctx, b, msg, invalid)
		return
	}

	oldMin, oldMax, err := h.settings.SetMuteDuration(minMinutes, maxMinutes)
	if err != nil {
		h.replyError(ctx, b, msg, err)
		return
	}

	h.reply(ctx, b, msg, fmt.Sprintf("Mute duration range updated from %d-%d minutes to %d-%d minutes.",
		oldMin, oldMax, minMinutes, maxMinutes))
	slog.Info("Mute duration updated", "min", minMinutes, "max", maxMinutes, "by", displayName(msg.From))
}

func (h *Handler) handleSetTargetServer(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	args := commandArgs(msg.Text)

	invalid := "Invalid group ID. Please provide a valid numeric ID, 'here' or '0'."
	if len(args) != 1 {
		h.reply(ctx, b, msg, invalid)
		return
	}

	target := msg.Chat.ID
	if args[0] != "here" {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			h.reply(ctx, b, msg, invalid)
			return
		}
		target = id
	}

	old, err := h.settings.SetTargetServer(target)
	if err != nil {
		h.replyError(ctx, b, msg, err)
		return
	}

	h.reply(ctx, b, msg, fmt.Sprintf("Target group for monitoring updated from %s (ID: %d) to %s (ID: %d).",
		describeTarget(old, msg.Chat), old, describeTarget(target, msg.Chat), target))
	slog.Info("Target group updated", "chat_id", target, "by", displayName(msg.From))
}

func (h *Handler) handleAddBypassRole(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	role, ok := parseRole(commandArgs(msg.Text))
	if !ok {
		h.reply(ctx, b, msg, invalidRole())
		return
	}

	if err := h.settings.AddBypassRole(int64(role)); err != nil {
		if stderrors.Is(err, errors.ErrRoleAlreadyBypassed) {
			h.reply(ctx, b, msg, fmt.Sprintf("Role %s is already in the bypass list.", role))
			return
		}
		h.replyError(ctx, b, msg, err)
		return
	}

	h.reply(ctx, b, msg, fmt.Sprintf("Role %s added to bypass list. Members with this role will not be moderated.", role))
	slog.Info("Role added to bypass list", "role", role.String(), "by", displayName(msg.From))
}

func (h *Handler) handleRemoveBypassRole(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	role, ok := parseRole(commandArgs(msg.Text))
	if !ok {
		h.reply(ctx, b, msg, invalidRole())
		return
	}

	if err := h.settings.RemoveBypassRole(int64(role)); err != nil {
		if stderrors.Is(err, errors.ErrRoleNotBypassed) {
			h.reply(ctx, b, msg, fmt.Sprintf("Role %s is not in the bypass list.", role))
			return
		}
		h.replyError(ctx, b, msg, err)
		return
	}

	h.reply(ctx, b, msg, fmt.Sprintf("Role %s removed from bypass list.", role))
	slog.Info("Role removed from bypass list", "role", role.String(), "by", displayName(msg.From))
}

func (h *Handler) handleConfigStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	cfg := h.settings.Snapshot()

	roles := lo.Map(cfg.BypassRoleIDs, func(id int64, _ int) string {
		return domain.MemberRole(id).String()
	})
	bypass := "None"
	if len(roles) > 0 {
		bypass = strings.Join(roles, ", ")
	}

	logChannel := "Not set"
	if cfg.LogChannelConfigured() {
		logChannel = strconv.FormatInt(cfg.LogChannelID, 10)
	}

	text := fmt.Sprintf(`🔧 Bot Configuration Status

Log Channel: %s
Mute Duration: %d-%d minutes
Target Group: %s
Bypass Roles: %s`,
		logChannel, cfg.MinMuteMinutes, cfg.MaxMuteMinutes, describeTarget(cfg.TargetServerID, msg.Chat), bypass)

	h.reply(ctx, b, msg, text)
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, msg *models.Message, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   text,
	}); err != nil {
		slog.Error("Error replying to command", "error", err, "chat_id", msg.Chat.ID)
	}
}

func (h *Handler) replyError(ctx context.Context, b *bot.Bot, msg *models.Message, err error) {
	switch {
	case stderrors.Is(err, errors.ErrMuteDurationTooShort):
		h.reply(ctx, b, msg, "Mute durations must be at least 1 minute.")
	case stderrors.Is(err, errors.ErrMuteDurationTooLong):
		h.reply(ctx, b, msg, fmt.Sprintf("Mute durations cannot be longer than %d minutes (366 days).", settingsdomain.MaxMuteMinutes))
	case stderrors.Is(err, errors.ErrMuteRangeInverted):
		h.reply(ctx, b, msg, "Minimum duration cannot be greater than maximum duration.")
	default:
		slog.Error("Error updating settings", "error", err, "chat_id", msg.Chat.ID)
		h.reply(ctx, b, msg, fmt.Sprintf("An error occurred: %v", err))
	}
}

// adminCommand reports which admin command the text invokes. Commands
// addressed to another bot do not count.
func (h *Handler) adminCommand(text string) (string, []string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil, false
	}
	name, target, addressed := strings.Cut(fields[0], "@")
	if _, ok := adminCommands[name]; !ok {
		return "", nil, false
	}
	if addressed && (target == "" || !strings.EqualFold(target, h.platform.Username())) {
		return "", nil, false
	}
	return name, fields[1:], true
}

func (h *Handler) matchCommand(name string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		cmd, _, ok := h.adminCommand(update.Message.Text)
		return ok && cmd == name
	}
}

// trustedCommand reports whether the message is an admin command with no
// trailing text, sent in a group by someone allowed to run it.
func (h *Handler) trustedCommand(ctx context.Context, msg *models.Message) bool {
	name, args, ok := h.adminCommand(msg.Text)
	if !ok || len(args) > adminCommands[name] {
		return false
	}
	if msg.From == nil || !isGroup(msg.Chat) {
		return false
	}
	allowed, err := h.platform.CanManage(ctx, msg.Chat.ID, msg.From.ID)
	if err != nil {
		slog.Warn("Could not check command permission, moderating message", "error", err,
			"chat_id", msg.Chat.ID, "user_id", msg.From.ID)
		return false
	}
	return allowed
}

func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// parseRole accepts a role name or its numeric id.
func parseRole(args []string) (domain.MemberRole, bool) {
	if len(args) != 1 {
		return 0, false
	}
	if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
		role := domain.MemberRole(id)
		return role, role.IsValid()
	}
	role, err := domain.ParseMemberRole(strings.TrimPrefix(args[0], "@"))
	return role, err == nil
}

func invalidRole() string {
	return fmt.Sprintf("Invalid role. Please provide one of: %s.", strings.Join(domain.MemberRoleNames(), ", "))
}

func describeLogChannel(id int64) string {
	if id == 0 {
		return "not set"
	}
	return strconv.FormatInt(id, 10)
}

func describeTarget(id int64, current models.Chat) string {
	switch {
	case id == 0:
		return "all groups"
	case id == current.ID && current.Title != "":
		return current.Title
	}
	return "group " + strconv.FormatInt(id, 10)
}
