package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"proxedu/pkg/logger"
	"proxedu/pkg/metrics"
	"proxedu/pkg/models"
	"proxedu/pkg/security"
	"proxedu/storage"
)

const (
	MinTopUpAmount = 1000
	historyLimit   = 50
)

type EnrollResult struct {
	Course     *models.Course
	Payment    *models.Payment
	NewBalance int64
}

type PaymentService interface {
	TopUp(ctx context.Context, userID, amount int64, method, description string) (*models.Payment, int64, error)
	Enroll(ctx context.Context, userID, courseID int64) (*EnrollResult, error)
	History(ctx context.Context, userID int64) ([]*models.Payment, error)
	Stats(ctx context.Context, userID int64) (*models.PaymentStats, error)
	EnrolledCourses(ctx context.Context, userID int64) ([]*models.EnrolledCourse, error)
	All(ctx context.Context) ([]*models.Payment, error)
}

type paymentService struct {
	users     storage.IUserStorage
	courses   storage.ICourseStorage
	payments  storage.IPaymentStorage
	notify    NotificationService
	messenger *messengerRef
	now       func() time.Time
	log       logger.ILogger
}

func NewPaymentService(stg storage.IStorage, notify NotificationService, messenger *messengerRef, clock func() time.Time, log logger.ILogger) PaymentService {
	return &paymentService{
		users:     stg.User(),
		courses:   stg.Course(),
		payments:  stg.Payment(),
		notify:    notify,
		messenger: messenger,
		now:       clock,
		log:       log,
	}
}

func (s *paymentService) user(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "payment: load user")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *paymentService) TopUp(ctx context.Context, userID, amount int64, method, description string) (*models.Payment, int64, error) {
	if amount < MinTopUpAmount {
		return nil, 0, ErrAmountTooSmall
	}
	if !models.IsValidPaymentMethod(method) {
		return nil, 0, ErrInvalidPaymentMethod
	}
	if description == "" {
		description = "To'lov"
	}

	payment, balance, err := s.payments.TopUp(ctx, &models.Payment{
		UserID:        userID,
		Amount:        amount,
		Method:        method,
		Description:   description,
		Status:        models.PaymentStatusCompleted,
		TransactionID: security.NewTransactionID("TXN"),
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "payment.TopUp")
	}
	if payment == nil {
		return nil, 0, ErrUserNotFound
	}

	metrics.TopUps.WithLabelValues(method).Inc()
	s.log.Info("balance topped up",
		logger.Int64("user_id", userID),
		logger.Int64("amount", amount),
		logger.String("method", method),
	)
	return payment, balance, nil
}

func (s *paymentService) Enroll(ctx context.Context, userID, courseID int64) (*EnrollResult, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "payment.Enroll: load course")
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.Status != models.CourseStatusActive {
		return nil, ErrCourseUnavailable
	}
	if user.IsEnrolled(courseID) {
		return nil, ErrAlreadyEnrolled
	}
	if user.Balance < course.Price {
		return nil, &BalanceError{Required: course.Price, Current: user.Balance}
	}

	payment, err := s.payments.Enroll(ctx, &models.Payment{
		UserID:        userID,
		Amount:        course.Price,
		Method:        models.PaymentMethodTransfer,
		Description:   fmt.Sprintf("%s kursiga a'zo bo'lish", course.Title),
		Status:        models.PaymentStatusCompleted,
		TransactionID: security.NewTransactionID("ENROLL"),
	}, courseID)
	switch {
	case errors.Is(err, storage.ErrAlreadyEnrolled):
		return nil, ErrAlreadyEnrolled
	case errors.Is(err, storage.ErrInsufficientBalance):
		current := user.Balance
		if fresh, ferr := s.users.GetByID(ctx, userID); ferr == nil && fresh != nil {
			current = fresh.Balance
		}
		return nil, &BalanceError{Required: course.Price, Current: current}
	case err != nil:
		return nil, errors.Wrap(err, "payment.Enroll")
	case payment == nil:
		return nil, ErrCourseNotFound
	}

	metrics.Enrollments.Inc()
	s.log.Info("course enrollment",
		logger.Int64("user_id", userID),
		logger.Int64("course_id", courseID),
		logger.Int64("price", course.Price),
	)
	s.notify.Notify(ctx, "Kursga yozilish", fmt.Sprintf("%s %q kursiga a'zo bo'ldi", user.FullName, course.Title))
	s.tellUser(ctx, user, fmt.Sprintf("✅ Siz %q kursiga muvaffaqiyatli a'zo bo'ldingiz!", course.Title))

	return &EnrollResult{
		Course:     course,
		Payment:    payment,
		NewBalance: user.Balance - course.Price,
	}, nil
}

func (s *paymentService) tellUser(ctx context.Context, user *models.User, text string) {
	m := s.messenger.get()
	if m == nil || user.TelegramChatID == nil {
		return
	}
	if err := m.SendToChat(ctx, *user.TelegramChatID, text); err != nil {
		s.log.Warning("failed to message user", logger.Int64("user_id", user.ID), logger.Error(err))
	}
}

func (s *paymentService) History(ctx context.Context, userID int64) ([]*models.Payment, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	payments, err := s.payments.GetByUser(ctx, userID, historyLimit)
	return payments, errors.Wrap(err, "payment.History")
}

func (s *paymentService) Stats(ctx context.Context, userID int64) (*models.PaymentStats, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.payments.Sum(ctx, &userID, nil)
	if err != nil {
		return nil, errors.Wrap(err, "payment.Stats")
	}
	since := monthStart(s.now())
	monthly, err := s.payments.Sum(ctx, &userID, &since)
	if err != nil {
		return nil, errors.Wrap(err, "payment.Stats")
	}
	return &models.PaymentStats{
		TotalPayments:   total,
		MonthlyPayments: monthly,
		CurrentBalance:  user.Balance,
	}, nil
}

func (s *paymentService) EnrolledCourses(ctx context.Context, userID int64) ([]*models.EnrolledCourse, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	courses, err := s.courses.GetByIDs(ctx, user.EnrolledCourses)
	if err != nil {
		return nil, errors.Wrap(err, "payment.EnrolledCourses")
	}
	out := make([]*models.EnrolledCourse, 0, len(courses))
	for _, c := range courses {
		out = append(out, &models.EnrolledCourse{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Instructor:  c.Instructor,
			Price:       c.Price,
			Duration:    c.Duration,
			Level:       c.Level,
			ImageURL:    c.ImageURL,
		})
	}
	return out, nil
}

func (s *paymentService) All(ctx context.Context) ([]*models.Payment, error) {
	payments, err := s.payments.GetAll(ctx)
	return payments, errors.Wrap(err, "payment.All")
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
