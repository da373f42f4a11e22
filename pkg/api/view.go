package api

import (
	"time"

	"proxedu/pkg/models"
)

// userView is the public projection of a user; offline fields only appear for offline students.
type userView struct {
	ID              int64          `json:"id"`
	FullName        string         `json:"fullName"`
	Phone           string         `json:"phone"`
	Role            string         `json:"role"`
	Balance         int64          `json:"balance"`
	EnrolledCourses []int64        `json:"enrolledCourses"`
	TelegramLinked  bool           `json:"telegramLinked"`
	CreatedAt       time.Time      `json:"createdAt"`
	Step            *int           `json:"step,omitempty"`
	TodayScores     map[string]int `json:"todayScores,omitempty"`
}

func newUserView(u *models.User) *userView {
	if u == nil {
		return nil
	}
	v := &userView{
		ID:              u.ID,
		FullName:        u.FullName,
		Phone:           u.Phone,
		Role:            u.Role,
		Balance:         u.Balance,
		EnrolledCourses: u.EnrolledCourses,
		TelegramLinked:  u.TelegramChatID != nil,
		CreatedAt:       u.CreatedAt,
	}
	if v.EnrolledCourses == nil {
		v.EnrolledCourses = []int64{}
	}
	if u.Offline != nil {
		step := u.Offline.Step
		v.Step = &step
		v.TodayScores = make(map[string]int, len(u.Offline.Scores))
		for _, s := range u.Offline.Scores {
			v.TodayScores[s.Date] = s.Score
		}
	}
	return v
}

func newUserViews(users []*models.User) []*userView {
	out := make([]*userView, 0, len(users))
	for _, u := range users {
		out = append(out, newUserView(u))
	}
	return out
}
