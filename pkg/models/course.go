package models

import "time"

const (
	CourseStatusDraft    = "draft"
	CourseStatusActive   = "active"
	CourseStatusInactive = "inactive"

	LevelBeginner     = "Boshlang'ich"
	LevelIntermediate = "O'rta"
	LevelAdvanced     = "Yuqori"
)

func IsValidCourseStatus(status string) bool {
	switch status {
	case CourseStatusDraft, CourseStatusActive, CourseStatusInactive:
		return true
	}
	return false
}

func IsValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type Course struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Instructor       string    `json:"instructor"`
	Price            int64     `json:"price"`
	Duration         string    `json:"duration"`
	Level            string    `json:"level"`
	Status           string    `json:"status"`
	EnrolledStudents int       `json:"enrolledStudents"`
	Rating           float64   `json:"rating"`
	TotalRatings     int       `json:"totalRatings"`
	ImageURL         string    `json:"imageUrl"`
	Category         string    `json:"category"`
	Tags             []string  `json:"tags"`
	ModulesCount     int       `json:"modulesCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type CourseModule struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"courseId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Lesson struct {
	ID            int64     `json:"id"`
	ModuleID      int64     `json:"moduleId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	VideoURL      string    `json:"videoUrl"`
	CodeSourceURL string    `json:"codeSourceUrl"`
	Order         int       `json:"order"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EnrolledCourse is the student-facing view; progress tracking is not implemented.
type EnrolledCourse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Instructor  string `json:"instructor"`
	Price       int64  `json:"price"`
	Duration    string `json:"duration"`
	Level       string `json:"level"`
	ImageURL    string `json:"imageUrl"`
	Progress    int    `json:"progress"`
}
