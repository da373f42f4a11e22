package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
)

const courseColumns = `c.id, c.title, c.description, c.instructor, c.price, c.duration, c.level, c.status,
	c.enrolled_students, c.rating, c.total_ratings, c.image_url, c.category, c.tags, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM course_modules m WHERE m.course_id = c.id)`

type courseRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewCourseRepo(db *pgxpool.Pool, log logger.ILogger) storage.ICourseStorage {
	return &courseRepo{db: db, log: log}
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.Instructor, &c.Price, &c.Duration, &c.Level, &c.Status,
		&c.EnrolledStudents, &c.Rating, &c.TotalRatings, &c.ImageURL, &c.Category, &c.Tags,
		&c.CreatedAt, &c.UpdatedAt, &c.ModulesCount,
	)
	if err != nil {
		return nil, err
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (r *courseRepo) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	query := `
		WITH c AS (
			INSERT INTO courses (title, description, instructor, price, duration, level, status,
				rating, total_ratings, image_url, category, tags, enrolled_students)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING *
		)
		SELECT ` + courseColumns + ` FROM c`
	c, err := scanCourse(r.db.QueryRow(ctx, query,
		course.Title, course.Description, course.Instructor, course.Price, course.Duration, course.Level,
		course.Status, course.Rating, course.TotalRatings, course.ImageURL, course.Category, tagsOrEmpty(course.Tags),
		course.EnrolledStudents,
	))
	if err != nil {
		r.log.Error("failed to create course", logger.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *courseRepo) Update(ctx context.Context, course *models.Course) (*models.Course, error) {
	_, err := r.db.Exec(ctx, `
		UPDATE courses
		SET title = $2, description = $3, instructor = $4, price = $5, duration = $6, level = $7,
			status = $8, rating = $9, total_ratings = $10, image_url = $11, category = $12, tags = $13,
			updated_at = NOW()
		WHERE id = $1`,
		course.ID, course.Title, course.Description, course.Instructor, course.Price, course.Duration,
		course.Level, course.Status, course.Rating, course.TotalRatings, course.ImageURL, course.Category,
		tagsOrEmpty(course.Tags),
	)
	if err != nil {
		r.log.Error("failed to update course", logger.Error(err))
		return nil, err
	}
	return r.GetByID(ctx, course.ID)
}

func (r *courseRepo) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	c, err := scanCourse(r.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses c WHERE c.id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get course", logger.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *courseRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list courses", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *courseRepo) GetAll(ctx context.Context) ([]*models.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses c ORDER BY c.created_at DESC, c.id DESC`)
}

func (r *courseRepo) GetByIDs(ctx context.Context, ids []int64) ([]*models.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses c WHERE c.id = ANY($1) ORDER BY c.id`, ids)
}

func (r *courseRepo) GetRecent(ctx context.Context, limit int) ([]*models.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses c ORDER BY c.created_at DESC, c.id DESC LIMIT $1`, limit)
}

func (r *courseRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		r.log.Error("failed to delete course", logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *courseRepo) UpdateStatus(ctx context.Context, id int64, status string) (*models.Course, error) {
	tag, err := r.db.Exec(ctx, "UPDATE courses SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		r.log.Error("failed to update course status", logger.Error(err))
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *courseRepo) GetTotal(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM courses").Scan(&count)
	return count, err
}
