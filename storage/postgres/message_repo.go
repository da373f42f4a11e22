package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
)

const messageSelect = `
	SELECT m.id, m.sender_id, m.receiver_id, COALESCE(s.full_name, ''), COALESCE(r.full_name, ''),
		m.content, m.status, m.created_at, m.updated_at
	FROM messages m
	LEFT JOIN users s ON s.id = m.sender_id
	LEFT JOIN users r ON r.id = m.receiver_id`

type messageRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewMessageRepo(db *pgxpool.Pool, log logger.ILogger) storage.IMessageStorage {
	return &messageRepo{db: db, log: log}
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.SenderName, &m.ReceiverName,
		&m.Content, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepo) get(ctx context.Context, id int64) (*models.Message, error) {
	m, err := scanMessage(r.db.QueryRow(ctx, messageSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get message", logger.Error(err))
		return nil, err
	}
	return m, nil
}

func (r *messageRepo) GetAll(ctx context.Context) ([]*models.Message, error) {
	rows, err := r.db.Query(ctx, messageSelect+` ORDER BY m.created_at DESC, m.id DESC`)
	if err != nil {
		r.log.Error("failed to list messages", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *messageRepo) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	status := msg.Status
	if status == "" {
		status = models.MessageStatusUnread
	}
	var id int64
	err := r.db.QueryRow(ctx,
		"INSERT INTO messages (sender_id, receiver_id, content, status) VALUES ($1, $2, $3, $4) RETURNING id",
		msg.SenderID, msg.ReceiverID, msg.Content, status,
	).Scan(&id)
	if err != nil {
		r.log.Error("failed to create message", logger.Error(err))
		return nil, err
	}
	return r.get(ctx, id)
}

func (r *messageRepo) MarkRead(ctx context.Context, id int64) (*models.Message, error) {
	tag, err := r.db.Exec(ctx, "UPDATE messages SET status = 'read', updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		r.log.Error("failed to mark message read", logger.Error(err))
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.get(ctx, id)
}

func (r *messageRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM messages WHERE id = $1", id)
	if err != nil {
		r.log.Error("failed to delete message", logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
