package inmem

import (
	"context"
	"sort"

	"proxedu/pkg/models"
)

type messageRepo struct {
	db *DB
}

// resolve expects db.mu to be held.
func (r *messageRepo) resolve(m *models.Message) *models.Message {
	out := *m
	if u, ok := r.db.users[m.SenderID]; ok {
		out.SenderName = u.FullName
	}
	if u, ok := r.db.users[m.ReceiverID]; ok {
		out.ReceiverName = u.FullName
	}
	return &out
}

func (r *messageRepo) GetAll(ctx context.Context) ([]*models.Message, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	messages := make([]*models.Message, 0, len(r.db.messages))
	for _, m := range r.db.messages {
		messages = append(messages, r.resolve(m))
	}
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID > messages[j].ID
		}
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	return messages, nil
}

func (r *messageRepo) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m := *msg
	m.ID = r.db.nextID("messages")
	now := r.db.now()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Status == "" {
		m.Status = models.MessageStatusUnread
	}
	r.db.messages[m.ID] = &m
	return r.resolve(&m), nil
}

func (r *messageRepo) MarkRead(ctx context.Context, id int64) (*models.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.messages[id]
	if !ok {
		return nil, nil
	}
	m.Status = models.MessageStatusRead
	m.UpdatedAt = r.db.now()
	return r.resolve(m), nil
}

func (r *messageRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.messages[id]; !ok {
		return false, nil
	}
	delete(r.db.messages, id)
	return true, nil
}
