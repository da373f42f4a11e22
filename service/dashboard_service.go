package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
)

const (
	recentPerKind  = 5
	recentActivity = 10
)

type DashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type dashboardService struct {
	stg storage.IStorage
	now func() time.Time
	log logger.ILogger
}

func NewDashboardService(stg storage.IStorage, clock func() time.Time, log logger.ILogger) DashboardService {
	return &dashboardService{stg: stg, now: clock, log: log}
}

func (s *dashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var (
		stats models.DashboardStats
		err   error
	)
	if stats.TotalUsers, err = s.stg.User().GetTotalUsers(ctx); err != nil {
		return nil, errors.Wrap(err, "dashboard: users")
	}
	if stats.TotalCourses, err = s.stg.Course().GetTotal(ctx); err != nil {
		return nil, errors.Wrap(err, "dashboard: courses")
	}
	if stats.TotalPayments, err = s.stg.Payment().Sum(ctx, nil, nil); err != nil {
		return nil, errors.Wrap(err, "dashboard: payments")
	}
	since := monthStart(s.now())
	if stats.MonthlyRevenue, err = s.stg.Payment().Sum(ctx, nil, &since); err != nil {
		return nil, errors.Wrap(err, "dashboard: revenue")
	}

	activity, err := s.activity(ctx)
	if err != nil {
		return nil, err
	}
	stats.RecentActivity = activity
	return &stats, nil
}

func (s *dashboardService) activity(ctx context.Context) ([]models.Activity, error) {
	users, err := s.stg.User().GetRecent(ctx, recentPerKind)
	if err != nil {
		return nil, errors.Wrap(err, "dashboard: recent users")
	}
	payments, err := s.stg.Payment().GetRecent(ctx, recentPerKind)
	if err != nil {
		return nil, errors.Wrap(err, "dashboard: recent payments")
	}
	courses, err := s.stg.Course().GetRecent(ctx, recentPerKind)
	if err != nil {
		return nil, errors.Wrap(err, "dashboard: recent courses")
	}

	out := make([]models.Activity, 0, len(users)+len(payments)+len(courses))
	for _, u := range users {
		out = append(out, models.Activity{
			Type:        models.ActivityUserRegistration,
			Title:       "Yangi foydalanuvchi qo'shildi",
			Description: u.FullName,
			Timestamp:   u.CreatedAt,
			Icon:        "user",
			Color:       "green",
		})
	}
	for _, p := range payments {
		a := models.Activity{
			Type:        models.ActivityPayment,
			Title:       "To'lov amalga oshirildi",
			Description: fmt.Sprintf("%s so'm - %s", FormatAmount(p.Amount), p.Method),
			Timestamp:   p.CreatedAt,
			Icon:        "payment",
			Color:       "blue",
		}
		if p.User != nil {
			a.User = p.User.FullName
		}
		out = append(out, a)
	}
	for _, c := range courses {
		out = append(out, models.Activity{
			Type:        models.ActivityCourseCreated,
			Title:       "Yangi kurs qo'shildi",
			Description: fmt.Sprintf("%s - %s", c.Title, c.Instructor),
			Timestamp:   c.CreatedAt,
			Icon:        "course",
			Color:       "orange",
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > recentActivity {
		out = out[:recentActivity]
	}
	return out, nil
}

// FormatAmount groups thousands with commas: 1500000 -> "1,500,000".
func FormatAmount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
