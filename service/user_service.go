package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/pkg/phone"
	"proxedu/pkg/security"
	"proxedu/storage"
)

var uzbekMonths = [...]string{
	"yanvar", "fevral", "mart", "aprel", "may", "iyun",
	"iyul", "avgust", "sentabr", "oktabr", "noyabr", "dekabr",
}

// ScoreDate formats the key used for daily offline scores, e.g. "18-oktabr".
func ScoreDate(t time.Time) string {
	return fmt.Sprintf("%d-%s", t.Day(), uzbekMonths[t.Month()-1])
}

type CreateUserInput struct {
	FullName string
	Phone    string
	Password string
	Role     string
	Balance  int64
}

// UpdateUserInput is a partial update; nil fields are left alone.
type UpdateUserInput struct {
	FullName   *string
	Phone      *string
	Role       *string
	Balance    *int64
	Step       *int
	TodayScore *int
	WeekScores []models.DailyScore
}

type UserService interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	GetOfflineStudents(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, in CreateUserInput) (*models.User, error)
	Update(ctx context.Context, id int64, in UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	ChatIDs(ctx context.Context) ([]int64, error)
}

type userService struct {
	stg storage.IUserStorage
	now func() time.Time
	log logger.ILogger
}

func NewUserService(stg storage.IStorage, clock func() time.Time, log logger.ILogger) UserService {
	return &userService{
		stg: stg.User(),
		now: clock,
		log: log,
	}
}

func (s *userService) GetAll(ctx context.Context) ([]*models.User, error) {
	users, err := s.stg.GetAll(ctx)
	return users, errors.Wrap(err, "user.GetAll")
}

func (s *userService) GetOfflineStudents(ctx context.Context) ([]*models.User, error) {
	users, err := s.stg.GetByRole(ctx, models.RoleStudentOffline)
	return users, errors.Wrap(err, "user.GetOfflineStudents")
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if !models.IsValidRole(in.Role) {
		return nil, ErrInvalidRole
	}
	if in.Balance < 0 {
		return nil, ErrInvalidBalance
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, errors.Wrap(err, "user.Create: hash")
	}

	user := &models.User{
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        phone.Normalize(in.Phone),
		PasswordHash: hash,
		Balance:      in.Balance,
	}
	user.SetRole(in.Role)

	created, err := s.stg.Create(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrDuplicatePhone
		}
		return nil, errors.Wrap(err, "user.Create")
	}
	s.log.Info("user created by admin", logger.Int64("user_id", created.ID), logger.String("role", created.Role))
	return created, nil
}

func (s *userService) Update(ctx context.Context, id int64, in UpdateUserInput) (*models.User, error) {
	user, err := s.stg.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "user.Update")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Phone != nil {
		user.Phone = phone.Normalize(*in.Phone)
	}
	if in.Role != nil {
		if !models.IsValidRole(*in.Role) {
			return nil, ErrInvalidRole
		}
		user.SetRole(*in.Role)
	}
	if in.Balance != nil {
		if *in.Balance < 0 {
			return nil, ErrInvalidBalance
		}
		user.Balance = *in.Balance
	}

	if user.Offline != nil {
		if in.Step != nil {
			user.Offline.Step = *in.Step
		}
		for _, ws := range in.WeekScores {
			user.Offline.SetScore(ws.Date, ws.Score)
		}
		if in.TodayScore != nil {
			user.Offline.SetScore(ScoreDate(s.now()), *in.TodayScore)
		}
	}

	updated, err := s.stg.Update(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrDuplicatePhone
		}
		return nil, errors.Wrap(err, "user.Update")
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	ok, err := s.stg.Delete(ctx, id)
	if err != nil {
		return errors.Wrap(err, "user.Delete")
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func (s *userService) ChatIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.stg.GetChatIDs(ctx)
	return ids, errors.Wrap(err, "user.ChatIDs")
}
