package inmem

import (
	"context"
	"sort"
	"time"

	"proxedu/pkg/models"
	"proxedu/storage"
)

type paymentRepo struct {
	db *DB
}

// insert expects db.mu to be held.
func (r *paymentRepo) insert(payment *models.Payment) (*models.Payment, error) {
	for _, p := range r.db.payments {
		if p.TransactionID == payment.TransactionID {
			return nil, storage.ErrDuplicate
		}
	}
	p := *payment
	p.ID = r.db.nextID("payments")
	p.CreatedAt = r.db.now()
	p.User = nil
	r.db.payments[p.ID] = &p
	out := p
	return &out, nil
}

func (r *paymentRepo) TopUp(ctx context.Context, payment *models.Payment) (*models.Payment, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[payment.UserID]
	if !ok {
		return nil, 0, nil
	}
	p, err := r.insert(payment)
	if err != nil {
		return nil, 0, err
	}
	u.Balance += p.Amount
	u.UpdatedAt = r.db.now()
	return p, u.Balance, nil
}

func (r *paymentRepo) Enroll(ctx context.Context, payment *models.Payment, courseID int64) (*models.Payment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[payment.UserID]
	if !ok {
		return nil, nil
	}
	c, ok := r.db.courses[courseID]
	if !ok {
		return nil, nil
	}
	if u.IsEnrolled(courseID) {
		return nil, storage.ErrAlreadyEnrolled
	}
	if u.Balance < payment.Amount {
		return nil, storage.ErrInsufficientBalance
	}
	p, err := r.insert(payment)
	if err != nil {
		return nil, err
	}
	now := r.db.now()
	u.Balance -= payment.Amount
	u.EnrolledCourses = append(u.EnrolledCourses, courseID)
	u.UpdatedAt = now
	c.EnrolledStudents++
	c.UpdatedAt = now
	return p, nil
}

// sorted expects db.mu to be held.
func (r *paymentRepo) sorted(keep func(*models.Payment) bool, withUser bool) []*models.Payment {
	payments := make([]*models.Payment, 0)
	for _, p := range r.db.payments {
		if keep != nil && !keep(p) {
			continue
		}
		out := *p
		if withUser {
			if u, ok := r.db.users[p.UserID]; ok {
				out.User = &models.PaymentUser{FullName: u.FullName, Phone: u.Phone}
			}
		}
		payments = append(payments, &out)
	}
	sort.Slice(payments, func(i, j int) bool {
		if payments[i].CreatedAt.Equal(payments[j].CreatedAt) {
			return payments[i].ID > payments[j].ID
		}
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments
}

func (r *paymentRepo) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Payment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	payments := r.sorted(func(p *models.Payment) bool { return p.UserID == userID }, false)
	if limit > 0 && len(payments) > limit {
		payments = payments[:limit]
	}
	return payments, nil
}

func (r *paymentRepo) GetAll(ctx context.Context) ([]*models.Payment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.sorted(nil, true), nil
}

func (r *paymentRepo) GetRecent(ctx context.Context, limit int) ([]*models.Payment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	payments := r.sorted(nil, true)
	if len(payments) > limit {
		payments = payments[:limit]
	}
	return payments, nil
}

func (r *paymentRepo) Sum(ctx context.Context, userID *int64, since *time.Time) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var total int64
	for _, p := range r.db.payments {
		if p.Status != models.PaymentStatusCompleted {
			continue
		}
		if userID != nil && p.UserID != *userID {
			continue
		}
		if since != nil && p.CreatedAt.Before(*since) {
			continue
		}
		total += p.Amount
	}
	return total, nil
}
