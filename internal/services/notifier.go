package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/harentsoaR/academic-scheduler/internal/logger"
	"github.com/harentsoaR/academic-scheduler/internal/models"
)

// TimetablePublishedEvent is the webhook payload sent when a timetable is published.
type TimetablePublishedEvent struct {
	Event       string    `json:"event"`
	TimetableID string    `json:"timetableId"`
	Title       string    `json:"title"`
	GroupID     string    `json:"groupId"`
	SlotCount   int       `json:"slotCount"`
	PublishedAt time.Time `json:"publishedAt"`
}

// NotificationService posts timetable events to a webhook. With no URL
// configured every call is a no-op.
type NotificationService struct {
	webhookURL string
	client     *http.Client
	sent       func(TimetablePublishedEvent, error)
}

func NewNotificationService(webhookURL string, timeout time.Duration) *NotificationService {
	return &NotificationService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

// TimetablePublished delivers the event in a goroutine so the API response
// is not held up by the webhook.
func (s *NotificationService) TimetablePublished(tt *models.Timetable) {
	if s == nil || s.webhookURL == "" {
		return
	}
	event := TimetablePublishedEvent{
		Event:       "timetable.published",
		TimetableID: tt.ID.Hex(),
		Title:       tt.Title,
		GroupID:     tt.Group.Hex(),
		SlotCount:   len(tt.Slots),
		PublishedAt: time.Now().UTC(),
	}
	go func() {
		err := s.post(context.Background(), event)
		if err != nil {
			logger.Warn().Err(err).Str("timetable", event.TimetableID).Msg("Timetable webhook failed")
		} else {
			logger.Info().Str("timetable", event.TimetableID).Msg("Timetable webhook delivered")
		}
		if s.sent != nil {
			s.sent(event, err)
		}
	}()
}

func (s *NotificationService) post(ctx context.Context, event TimetablePublishedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
