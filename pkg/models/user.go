package models

import "time"

const (
	RoleAdmin          = "admin"
	RoleStudent        = "student"
	RoleStudentOffline = "student_offline"
)

var Roles = []string{RoleAdmin, RoleStudent, RoleStudentOffline}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID              int64           `json:"id"`
	FullName        string          `json:"fullName"`
	Phone           string          `json:"phone"`
	PasswordHash    string          `json:"-"`
	Role            string          `json:"role"`
	Balance         int64           `json:"balance"`
	EnrolledCourses []int64         `json:"enrolledCourses"`
	TelegramChatID  *int64          `json:"telegramChatId,omitempty"`
	Offline         *OfflineProfile `json:"offline,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OfflineProfile is only carried by users with the student_offline role.
type OfflineProfile struct {
	Step   int          `json:"step"`
	Scores []DailyScore `json:"todayScores"`
}

type DailyScore struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

func NewOfflineProfile() *OfflineProfile {
	return &OfflineProfile{Step: 1, Scores: []DailyScore{}}
}

// SetScore keeps a single entry per date.
func (p *OfflineProfile) SetScore(date string, score int) {
	for i := range p.Scores {
		if p.Scores[i].Date == date {
			p.Scores[i].Score = score
			return
		}
	}
	p.Scores = append(p.Scores, DailyScore{Date: date, Score: score})
}

// SetRole switches the role and keeps the offline payload in sync with it.
func (u *User) SetRole(role string) {
	u.Role = role
	if role == RoleStudentOffline {
		if u.Offline == nil {
			u.Offline = NewOfflineProfile()
		}
		return
	}
	u.Offline = nil
}

func (u *User) IsEnrolled(courseID int64) bool {
	for _, id := range u.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
