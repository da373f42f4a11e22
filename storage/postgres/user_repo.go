package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
)

const userColumns = `id, full_name, phone, password_hash, role, balance, enrolled_courses,
	telegram_chat_id, offline_step, offline_scores, created_at, updated_at`

type userRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewUserRepo(db *pgxpool.Pool, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u      models.User
		step   *int
		scores []byte
	)
	err := row.Scan(
		&u.ID, &u.FullName, &u.Phone, &u.PasswordHash, &u.Role, &u.Balance, &u.EnrolledCourses,
		&u.TelegramChatID, &step, &scores, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if u.EnrolledCourses == nil {
		u.EnrolledCourses = []int64{}
	}
	if step != nil {
		u.Offline = &models.OfflineProfile{Step: *step, Scores: []models.DailyScore{}}
		if len(scores) > 0 {
			if err := json.Unmarshal(scores, &u.Offline.Scores); err != nil {
				return nil, err
			}
		}
	}
	return &u, nil
}

// offlineArgs maps the role payload to nullable columns.
func offlineArgs(u *models.User) (*int, *string, error) {
	if u.Offline == nil {
		return nil, nil, nil
	}
	scores := u.Offline.Scores
	if scores == nil {
		scores = []models.DailyScore{}
	}
	data, err := json.Marshal(scores)
	if err != nil {
		return nil, nil, err
	}
	step, raw := u.Offline.Step, string(data)
	return &step, &raw, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	step, scores, err := offlineArgs(user)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO users (full_name, phone, password_hash, role, balance, telegram_chat_id, offline_step, offline_scores)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query,
		user.FullName, user.Phone, user.PasswordHash, user.Role, user.Balance, user.TelegramChatID, step, scores,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicate
		}
		r.log.Error("failed to create user", logger.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *userRepo) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get user", logger.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *userRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getOne(ctx, "phone = $1", phone)
}

func (r *userRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list users", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) GetAll(ctx context.Context) ([]*models.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
}

func (r *userRepo) GetByRole(ctx context.Context, role string) ([]*models.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at DESC, id DESC`, role)
}

func (r *userRepo) GetRecent(ctx context.Context, limit int) ([]*models.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

func (r *userRepo) Update(ctx context.Context, user *models.User) (*models.User, error) {
	step, scores, err := offlineArgs(user)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE users
		SET full_name = $2, phone = $3, role = $4, balance = $5,
			offline_step = $6, offline_scores = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.FullName, user.Phone, user.Role, user.Balance, step, scores,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicate
		}
		r.log.Error("failed to update user", logger.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2", hash, id)
	return err
}

func (r *userRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		r.log.Error("failed to delete user", logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *userRepo) GetTotalUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

func (r *userRepo) GetChatIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, "SELECT telegram_chat_id FROM users WHERE telegram_chat_id IS NOT NULL ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
