package inmem

import (
	"sync"
	"time"

	"proxedu/pkg/models"
	"proxedu/storage"
)

type DB struct {
	mu  sync.RWMutex
	now func() time.Time

	users    map[int64]*models.User
	courses  map[int64]*models.Course
	modules  map[int64]*models.CourseModule
	lessons  map[int64]*models.Lesson
	payments map[int64]*models.Payment
	messages map[int64]*models.Message

	seq map[string]int64
}

func New() *DB {
	return &DB{
		now:      time.Now,
		users:    make(map[int64]*models.User),
		courses:  make(map[int64]*models.Course),
		modules:  make(map[int64]*models.CourseModule),
		lessons:  make(map[int64]*models.Lesson),
		payments: make(map[int64]*models.Payment),
		messages: make(map[int64]*models.Message),
		seq:      make(map[string]int64),
	}
}

func (db *DB) nextID(table string) int64 {
	db.seq[table]++
	return db.seq[table]
}

func (db *DB) User() storage.IUserStorage       { return &userRepo{db: db} }
func (db *DB) Course() storage.ICourseStorage   { return &courseRepo{db: db} }
func (db *DB) Module() storage.IModuleStorage   { return &moduleRepo{db: db} }
func (db *DB) Lesson() storage.ILessonStorage   { return &lessonRepo{db: db} }
func (db *DB) Payment() storage.IPaymentStorage { return &paymentRepo{db: db} }
func (db *DB) Message() storage.IMessageStorage { return &messageRepo{db: db} }

func (db *DB) Close() {}

func copyUser(u *models.User) *models.User {
	c := *u
	c.EnrolledCourses = append([]int64{}, u.EnrolledCourses...)
	if u.TelegramChatID != nil {
		id := *u.TelegramChatID
		c.TelegramChatID = &id
	}
	if u.Offline != nil {
		p := *u.Offline
		p.Scores = append([]models.DailyScore{}, u.Offline.Scores...)
		c.Offline = &p
	}
	return &c
}

func copyCourse(c *models.Course) *models.Course {
	cc := *c
	cc.Tags = append([]string{}, c.Tags...)
	return &cc
}
