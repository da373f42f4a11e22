package service

import (
	"context"
	"strconv"
	"time"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
)

type NotificationService interface {
	// Notify publishes a new admin notification; failures are only logged.
	Notify(ctx context.Context, title, body string)
	Publish(ctx context.Context, event models.NotificationEvent) error
}

type notificationService struct {
	pub Publisher
	now func() time.Time
	log logger.ILogger
}

func NewNotificationService(pub Publisher, clock func() time.Time, log logger.ILogger) NotificationService {
	return &notificationService{pub: pub, now: clock, log: log}
}

func (s *notificationService) Notify(ctx context.Context, title, body string) {
	now := s.now()
	event := models.NotificationEvent{
		Type: models.EventNotificationNew,
		Notification: &models.AdminNotification{
			ID:        strconv.FormatInt(now.UnixNano(), 10),
			Title:     title,
			Body:      body,
			CreatedAt: now,
		},
	}
	if err := s.Publish(ctx, event); err != nil {
		s.log.Warning("failed to publish admin notification", logger.String("title", title), logger.Error(err))
	}
}

func (s *notificationService) Publish(ctx context.Context, event models.NotificationEvent) error {
	if s.pub == nil {
		return nil
	}
	return s.pub.Publish(ctx, event)
}
