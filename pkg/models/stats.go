package models

import "time"

const (
	ActivityUserRegistration = "user_registration"
	ActivityPayment          = "payment"
	ActivityCourseCreated    = "course_created"
)

type Activity struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	User        string    `json:"user,omitempty"`
}

type DashboardStats struct {
	TotalUsers     int        `json:"totalUsers"`
	TotalPayments  int64      `json:"totalPayments"`
	TotalCourses   int        `json:"totalCourses"`
	MonthlyRevenue int64      `json:"monthlyRevenue"`
	RecentActivity []Activity `json:"recentActivity"`
}
