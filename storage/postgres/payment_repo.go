package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
)

const paymentColumns = `p.id, p.user_id, p.amount, p.payment_method, p.description, p.status, p.transaction_id, p.created_at`

type paymentRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewPaymentRepo(db *pgxpool.Pool, log logger.ILogger) storage.IPaymentStorage {
	return &paymentRepo{db: db, log: log}
}

func scanPayment(row pgx.Row, withUser bool) (*models.Payment, error) {
	var (
		p     models.Payment
		name  *string
		phone *string
	)
	dest := []interface{}{&p.ID, &p.UserID, &p.Amount, &p.Method, &p.Description, &p.Status, &p.TransactionID, &p.CreatedAt}
	if withUser {
		dest = append(dest, &name, &phone)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if name != nil {
		p.User = &models.PaymentUser{FullName: *name}
		if phone != nil {
			p.User.Phone = *phone
		}
	}
	return &p, nil
}

func insertPayment(ctx context.Context, tx pgx.Tx, payment *models.Payment) (*models.Payment, error) {
	p, err := scanPayment(tx.QueryRow(ctx, `
		INSERT INTO payments AS p (user_id, amount, payment_method, description, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+paymentColumns,
		payment.UserID, payment.Amount, payment.Method, payment.Description, payment.Status, payment.TransactionID,
	), false)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) TopUp(ctx context.Context, payment *models.Payment) (*models.Payment, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx,
		"UPDATE users SET balance = balance + $1, updated_at = NOW() WHERE id = $2 RETURNING balance",
		payment.Amount, payment.UserID,
	).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, 0, nil
		}
		r.log.Error("failed to credit balance", logger.Error(err))
		return nil, 0, err
	}

	p, err := insertPayment(ctx, tx, payment)
	if err != nil {
		r.log.Error("failed to insert payment", logger.Error(err))
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return p, balance, nil
}

func (r *paymentRepo) Enroll(ctx context.Context, payment *models.Payment, courseID int64) (*models.Payment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET balance = balance - $1, enrolled_courses = array_append(enrolled_courses, $2::BIGINT), updated_at = NOW()
		WHERE id = $3 AND balance >= $1 AND NOT ($2::BIGINT = ANY(enrolled_courses))`,
		payment.Amount, courseID, payment.UserID,
	)
	if err != nil {
		r.log.Error("failed to debit balance", logger.Error(err))
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		var (
			balance  int64
			enrolled bool
		)
		err := tx.QueryRow(ctx, "SELECT balance, $2::BIGINT = ANY(enrolled_courses) FROM users WHERE id = $1",
			payment.UserID, courseID).Scan(&balance, &enrolled)
		switch {
		case err == pgx.ErrNoRows:
			return nil, nil
		case err != nil:
			return nil, err
		case enrolled:
			return nil, storage.ErrAlreadyEnrolled
		default:
			return nil, storage.ErrInsufficientBalance
		}
	}

	tag, err = tx.Exec(ctx,
		"UPDATE courses SET enrolled_students = enrolled_students + 1, updated_at = NOW() WHERE id = $1", courseID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	p, err := insertPayment(ctx, tx, payment)
	if err != nil {
		r.log.Error("failed to insert enrollment payment", logger.Error(err))
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) list(ctx context.Context, withUser bool, query string, args ...interface{}) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list payments", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	payments := make([]*models.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows, withUser)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepo) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Payment, error) {
	return r.list(ctx, false,
		`SELECT `+paymentColumns+` FROM payments p WHERE p.user_id = $1 ORDER BY p.created_at DESC, p.id DESC LIMIT $2`,
		userID, limit)
}

func (r *paymentRepo) GetAll(ctx context.Context) ([]*models.Payment, error) {
	return r.list(ctx, true,
		`SELECT `+paymentColumns+`, u.full_name, u.phone
		FROM payments p LEFT JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC`)
}

func (r *paymentRepo) GetRecent(ctx context.Context, limit int) ([]*models.Payment, error) {
	return r.list(ctx, true,
		`SELECT `+paymentColumns+`, u.full_name, u.phone
		FROM payments p LEFT JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC LIMIT $1`, limit)
}

func (r *paymentRepo) Sum(ctx context.Context, userID *int64, since *time.Time) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE status = 'completed'
			AND ($1::BIGINT IS NULL OR user_id = $1)
			AND ($2::TIMESTAMPTZ IS NULL OR created_at >= $2)`,
		userID, since,
	).Scan(&total)
	if err != nil {
		r.log.Error("failed to sum payments", logger.Error(err))
		return 0, err
	}
	return total, nil
}
