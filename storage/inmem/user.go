package inmem

import (
	"context"
	"sort"

	"proxedu/pkg/models"
	"proxedu/storage"
)

type userRepo struct {
	db *DB
}

func (r *userRepo) phoneTaken(phone string, exclude int64) bool {
	for _, u := range r.db.users {
		if u.Phone == phone && u.ID != exclude {
			return true
		}
	}
	return false
}

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.phoneTaken(user.Phone, 0) {
		return nil, storage.ErrDuplicate
	}
	u := copyUser(user)
	u.ID = r.db.nextID("users")
	now := r.db.now()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.EnrolledCourses == nil {
		u.EnrolledCourses = []int64{}
	}
	r.db.users[u.ID] = u
	return copyUser(u), nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if u, ok := r.db.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (r *userRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Phone == phone {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *userRepo) list(keep func(*models.User) bool) []*models.User {
	users := make([]*models.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		if keep == nil || keep(u) {
			users = append(users, copyUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users
}

func (r *userRepo) GetAll(ctx context.Context) ([]*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.list(nil), nil
}

func (r *userRepo) GetByRole(ctx context.Context, role string) ([]*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.list(func(u *models.User) bool { return u.Role == role }), nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	orig, ok := r.db.users[user.ID]
	if !ok {
		return nil, nil
	}
	if r.phoneTaken(user.Phone, user.ID) {
		return nil, storage.ErrDuplicate
	}
	u := copyUser(user)
	u.PasswordHash = orig.PasswordHash
	u.EnrolledCourses = orig.EnrolledCourses
	u.TelegramChatID = orig.TelegramChatID
	u.CreatedAt = orig.CreatedAt
	u.UpdatedAt = r.db.now()
	r.db.users[u.ID] = u
	return copyUser(u), nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if u, ok := r.db.users[id]; ok {
		u.PasswordHash = hash
		u.UpdatedAt = r.db.now()
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return false, nil
	}
	delete(r.db.users, id)
	return true, nil
}

func (r *userRepo) GetTotalUsers(ctx context.Context) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return len(r.db.users), nil
}

func (r *userRepo) GetRecent(ctx context.Context, limit int) ([]*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := r.list(nil)
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *userRepo) GetChatIDs(ctx context.Context) ([]int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	ids := make([]int64, 0)
	for _, u := range r.list(nil) {
		if u.TelegramChatID != nil {
			ids = append(ids, *u.TelegramChatID)
		}
	}
	return ids, nil
}
