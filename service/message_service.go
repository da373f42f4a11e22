package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
)

type MessageService interface {
	List(ctx context.Context) ([]*models.Message, error)
	Send(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error)
	MarkRead(ctx context.Context, id int64) (*models.Message, error)
	Delete(ctx context.Context, id int64) error
}

type messageService struct {
	users    storage.IUserStorage
	messages storage.IMessageStorage
	log      logger.ILogger
}

func NewMessageService(stg storage.IStorage, log logger.ILogger) MessageService {
	return &messageService{
		users:    stg.User(),
		messages: stg.Message(),
		log:      log,
	}
}

func (s *messageService) List(ctx context.Context) ([]*models.Message, error) {
	messages, err := s.messages.GetAll(ctx)
	return messages, errors.Wrap(err, "message.List")
}

func (s *messageService) Send(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error) {
	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		return nil, errors.Wrap(err, "message.Send")
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}
	msg, err := s.messages.Create(ctx, &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    strings.TrimSpace(content),
		Status:     models.MessageStatusUnread,
	})
	return msg, errors.Wrap(err, "message.Send")
}

func (s *messageService) MarkRead(ctx context.Context, id int64) (*models.Message, error) {
	msg, err := s.messages.MarkRead(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "message.MarkRead")
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}

func (s *messageService) Delete(ctx context.Context, id int64) error {
	ok, err := s.messages.Delete(ctx, id)
	if err != nil {
		return errors.Wrap(err, "message.Delete")
	}
	if !ok {
		return ErrMessageNotFound
	}
	return nil
}
