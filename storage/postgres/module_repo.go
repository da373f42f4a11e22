package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
)

const moduleColumns = `id, course_id, title, description, sort_order, created_at, updated_at`

type moduleRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewModuleRepo(db *pgxpool.Pool, log logger.ILogger) storage.IModuleStorage {
	return &moduleRepo{db: db, log: log}
}

func scanModule(row pgx.Row) (*models.CourseModule, error) {
	var m models.CourseModule
	if err := row.Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.Order, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *moduleRepo) Create(ctx context.Context, module *models.CourseModule) (*models.CourseModule, error) {
	m, err := scanModule(r.db.QueryRow(ctx, `
		INSERT INTO course_modules (course_id, title, description, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING `+moduleColumns,
		module.CourseID, module.Title, module.Description, module.Order,
	))
	if err != nil {
		r.log.Error("failed to create module", logger.Error(err))
		return nil, err
	}
	return m, nil
}

func (r *moduleRepo) Update(ctx context.Context, module *models.CourseModule) (*models.CourseModule, error) {
	m, err := scanModule(r.db.QueryRow(ctx, `
		UPDATE course_modules
		SET title = $3, description = $4, sort_order = $5, updated_at = NOW()
		WHERE id = $1 AND course_id = $2
		RETURNING `+moduleColumns,
		module.ID, module.CourseID, module.Title, module.Description, module.Order,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to update module", logger.Error(err))
		return nil, err
	}
	return m, nil
}

func (r *moduleRepo) GetByID(ctx context.Context, id int64) (*models.CourseModule, error) {
	m, err := scanModule(r.db.QueryRow(ctx, `SELECT `+moduleColumns+` FROM course_modules WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get module", logger.Error(err))
		return nil, err
	}
	return m, nil
}

func (r *moduleRepo) GetByCourse(ctx context.Context, courseID int64) ([]*models.CourseModule, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+moduleColumns+` FROM course_modules WHERE course_id = $1 ORDER BY sort_order, created_at, id`, courseID)
	if err != nil {
		r.log.Error("failed to list modules", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	modules := make([]*models.CourseModule, 0)
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

func (r *moduleRepo) Delete(ctx context.Context, courseID, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM course_modules WHERE id = $1 AND course_id = $2", id, courseID)
	if err != nil {
		r.log.Error("failed to delete module", logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
