package service

import (
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/audit/domain"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/audit/repository"
)

const feedLimit = 50

// Service keeps the recent audit trail and renders it as an RSS feed.
type Service struct {
	repo repository.Repository
	now  func() time.Time
}

func New(repo repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record appends a record to the recent trail.
func (s *Service) Record(record domain.Record) {
	s.repo.Append(record)
	slog.Debug("Audit record kept", "user_id", record.UserID, "message_id", record.MessageID, "muted", record.Muted)
}

func (s *Service) Recent(limit int) []domain.Record {
	return s.repo.Recent(limit)
}

// GenerateFeed builds an RSS feed of the latest audit records.
func (s *Service) GenerateFeed(baseURL string) *feeds.Feed {
	records := s.repo.Recent(feedLimit)

	updated := s.now()
	if len(records) > 0 {
		updated = records[0].CreatedAt
	}

	feed := &feeds.Feed{
		Title:       "Moderation audit log",
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/audit/feed", baseURL)},
		Description: "Recently flagged messages and the enforcement applied",
		Updated:     updated,
	}

	for _, record := range records {
		feed.Items = append(feed.Items, recordToFeedItem(record))
	}
	return feed
}

func recordToFeedItem(record domain.Record) *feeds.Item {
	description := fmt.Sprintf("User: %s (ID: %d)\nFlagged Word: %s\nReason: %s\nTimeout Duration: %d minutes\nChannel: %s (ID: %d)\nTimeout Status: %s",
		record.UserName, record.UserID,
		record.FlaggedWord,
		record.Reason,
		record.DurationMinutes,
		record.ChannelName, record.ChannelID,
		record.Status(),
	)

	var content strings.Builder
	for _, line := range strings.Split(description, "\n") {
		fmt.Fprintf(&content, "<p>%s</p>", html.EscapeString(line))
	}
	fmt.Fprintf(&content, "<pre>%s</pre>", html.EscapeString(record.Excerpt))

	item := &feeds.Item{
		Title:       record.Title(),
		Description: description,
		Content:     content.String(),
		Author:      &feeds.Author{Name: record.UserName},
		Created:     record.CreatedAt,
		Id:          record.ID(),
	}
	if link := record.MessageLink(); link != "" {
		item.Link = &feeds.Link{Href: link}
	}
	return item
}
