package domain

import "time"

// Message is an inbound chat message as seen by the moderation pipeline.
// GuildID is zero for messages outside a group, such as private chats.
type Message struct {
	ID          int64
	GuildID     int64
	GuildName   string
	ChannelID   int64
	ChannelName string
	Author      Author
	Text        string
	SentAt      time.Time
}

type Author struct {
	ID          int64
	DisplayName string
	IsBot       bool
	// Member is nil when the author has no standing membership in the group.
	Member *Member
}

type Member struct {
	Roles []int64
}

func (m Message) InGuild() bool {
	return m.GuildID != 0
}

func (a Author) IsMember() bool {
	return a.Member != nil
}

func (a Author) Roles() []int64 {
	if a.Member == nil {
		return nil
	}
	return a.Member.Roles
}
