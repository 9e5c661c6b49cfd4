package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

const ExcerptLimit = 1000

// Record describes one flagged message and what was done about it.
type Record struct {
	UserID          int64     `json:"user_id"`
	UserName        string    `json:"user_name"`
	FlaggedWord     string    `json:"flagged_word"`
	Reason          string    `json:"reason"`
	DurationMinutes int       `json:"duration_minutes"`
	GuildID         int64     `json:"guild_id"`
	GuildName       string    `json:"guild_name"`
	ChannelID       int64     `json:"channel_id"`
	ChannelName     string    `json:"channel_name"`
	Muted           bool      `json:"muted"`
	Excerpt         string    `json:"excerpt"`
	MessageID       int64     `json:"message_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// ID is unique per message within a chat.
func (r Record) ID() string {
	return fmt.Sprintf("%d-%d", r.ChannelID, r.MessageID)
}

// MessageLink points at the flagged message. Only supergroup messages have
// a public link form; other chats yield an empty string.
func (r Record) MessageLink() string {
	const supergroupPrefix = -1_000_000_000_000
	if r.ChannelID > supergroupPrefix {
		return ""
	}
	return fmt.Sprintf("https://t.me/c/%d/%d", -(r.ChannelID - supergroupPrefix), r.MessageID)
}

func (r Record) Title() string {
	if r.Muted {
		return "🚨 Message Flagged and User Timed Out 🚨"
	}
	return "🚨 Message Flagged (Timeout Failed) 🚨"
}

func (r Record) Status() string {
	if r.Muted {
		return "✅ Success"
	}
	return "❌ Failed"
}

// Excerpt returns at most the first ExcerptLimit characters of text.
func Excerpt(text string) string {
	if utf8.RuneCountInString(text) <= ExcerptLimit {
		return text
	}
	return string([]rune(text)[:ExcerptLimit])
}
