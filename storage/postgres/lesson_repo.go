package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
)

const lessonColumns = `id, module_id, title, description, video_url, code_source_url, sort_order, created_at, updated_at`

type lessonRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewLessonRepo(db *pgxpool.Pool, log logger.ILogger) storage.ILessonStorage {
	return &lessonRepo{db: db, log: log}
}

func scanLesson(row pgx.Row) (*models.Lesson, error) {
	var l models.Lesson
	err := row.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Description, &l.VideoURL, &l.CodeSourceURL,
		&l.Order, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lessonRepo) Create(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error) {
	l, err := scanLesson(r.db.QueryRow(ctx, `
		INSERT INTO lessons (module_id, title, description, video_url, code_source_url, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+lessonColumns,
		lesson.ModuleID, lesson.Title, lesson.Description, lesson.VideoURL, lesson.CodeSourceURL, lesson.Order,
	))
	if err != nil {
		r.log.Error("failed to create lesson", logger.Error(err))
		return nil, err
	}
	return l, nil
}

func (r *lessonRepo) Update(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error) {
	l, err := scanLesson(r.db.QueryRow(ctx, `
		UPDATE lessons
		SET title = $3, description = $4, video_url = $5, code_source_url = $6, sort_order = $7, updated_at = NOW()
		WHERE id = $1 AND module_id = $2
		RETURNING `+lessonColumns,
		lesson.ID, lesson.ModuleID, lesson.Title, lesson.Description, lesson.VideoURL, lesson.CodeSourceURL, lesson.Order,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to update lesson", logger.Error(err))
		return nil, err
	}
	return l, nil
}

func (r *lessonRepo) GetByID(ctx context.Context, id int64) (*models.Lesson, error) {
	l, err := scanLesson(r.db.QueryRow(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get lesson", logger.Error(err))
		return nil, err
	}
	return l, nil
}

func (r *lessonRepo) GetByModule(ctx context.Context, moduleID int64) ([]*models.Lesson, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE module_id = $1 ORDER BY sort_order, created_at, id`, moduleID)
	if err != nil {
		r.log.Error("failed to list lessons", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	lessons := make([]*models.Lesson, 0)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (r *lessonRepo) Delete(ctx context.Context, moduleID, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM lessons WHERE id = $1 AND module_id = $2", id, moduleID)
	if err != nil {
		r.log.Error("failed to delete lesson", logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
