package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
)

type CourseInput struct {
	Title       string
	Description string
	Instructor  string
	Price       int64
	Duration    string
	Level       string
	Category    string
	ImageURL    string
	Tags        []string
}

type CourseUpdate struct {
	Title       *string
	Description *string
	Instructor  *string
	Price       *int64
	Duration    *string
	Level       *string
	Status      *string
	Category    *string
	ImageURL    *string
	Tags        []string
}

type ModuleInput struct {
	Title       *string
	Description *string
	Order       *int
}

type LessonInput struct {
	Title         *string
	Description   *string
	VideoURL      *string
	CodeSourceURL *string
	Order         *int
}

type CourseService interface {
	List(ctx context.Context) ([]*models.Course, error)
	Get(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, in CourseInput) (*models.Course, error)
	Update(ctx context.Context, id int64, in CourseUpdate) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status string) (*models.Course, error)
	InitDemo(ctx context.Context) ([]*models.Course, error)

	Modules(ctx context.Context, courseID int64) ([]*models.CourseModule, error)
	CreateModule(ctx context.Context, courseID int64, in ModuleInput) (*models.CourseModule, error)
	UpdateModule(ctx context.Context, courseID, moduleID int64, in ModuleInput) (*models.CourseModule, error)
	DeleteModule(ctx context.Context, courseID, moduleID int64) error

	Lessons(ctx context.Context, moduleID int64) ([]*models.Lesson, error)
	CreateLesson(ctx context.Context, moduleID int64, in LessonInput) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, moduleID, lessonID int64, in LessonInput) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, moduleID, lessonID int64) error
}

type courseService struct {
	courses storage.ICourseStorage
	modules storage.IModuleStorage
	lessons storage.ILessonStorage
	notify  NotificationService
	log     logger.ILogger
}

func NewCourseService(stg storage.IStorage, notify NotificationService, log logger.ILogger) CourseService {
	return &courseService{
		courses: stg.Course(),
		modules: stg.Module(),
		lessons: stg.Lesson(),
		notify:  notify,
		log:     log,
	}
}

func (s *courseService) List(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.courses.GetAll(ctx)
	return courses, errors.Wrap(err, "course.List")
}

func (s *courseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "course.Get")
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

func (s *courseService) Create(ctx context.Context, in CourseInput) (*models.Course, error) {
	if in.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if !models.IsValidLevel(in.Level) {
		return nil, ErrInvalidLevel
	}
	course, err := s.courses.Create(ctx, &models.Course{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Instructor:  in.Instructor,
		Price:       in.Price,
		Duration:    in.Duration,
		Level:       in.Level,
		Status:      models.CourseStatusDraft,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Tags:        in.Tags,
	})
	if err != nil {
		return nil, errors.Wrap(err, "course.Create")
	}
	s.notify.Notify(ctx, "Yangi kurs", fmt.Sprintf("%s - %s", course.Title, course.Instructor))
	return course, nil
}

func (s *courseService) Update(ctx context.Context, id int64, in CourseUpdate) (*models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		course.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		course.Description = *in.Description
	}
	if in.Instructor != nil {
		course.Instructor = *in.Instructor
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, ErrInvalidPrice
		}
		course.Price = *in.Price
	}
	if in.Duration != nil {
		course.Duration = *in.Duration
	}
	if in.Level != nil {
		if !models.IsValidLevel(*in.Level) {
			return nil, ErrInvalidLevel
		}
		course.Level = *in.Level
	}
	if in.Status != nil {
		if !models.IsValidCourseStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		course.Status = *in.Status
	}
	if in.Category != nil {
		course.Category = *in.Category
	}
	if in.ImageURL != nil {
		course.ImageURL = *in.ImageURL
	}
	if in.Tags != nil {
		course.Tags = in.Tags
	}

	updated, err := s.courses.Update(ctx, course)
	if err != nil {
		return nil, errors.Wrap(err, "course.Update")
	}
	if updated == nil {
		return nil, ErrCourseNotFound
	}
	return updated, nil
}

func (s *courseService) Delete(ctx context.Context, id int64) error {
	ok, err := s.courses.Delete(ctx, id)
	if err != nil {
		return errors.Wrap(err, "course.Delete")
	}
	if !ok {
		return ErrCourseNotFound
	}
	return nil
}

func (s *courseService) SetStatus(ctx context.Context, id int64, status string) (*models.Course, error) {
	if !models.IsValidCourseStatus(status) {
		return nil, ErrInvalidStatus
	}
	course, err := s.courses.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, errors.Wrap(err, "course.SetStatus")
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// InitDemo seeds the catalog only while it is empty; it returns the courses it added.
func (s *courseService) InitDemo(ctx context.Context) ([]*models.Course, error) {
	total, err := s.courses.GetTotal(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "course.InitDemo")
	}
	if total > 0 {
		return nil, nil
	}

	added := make([]*models.Course, 0, len(demoCourses))
	for i := range demoCourses {
		c := demoCourses[i]
		created, err := s.courses.Create(ctx, &c)
		if err != nil {
			return added, errors.Wrap(err, "course.InitDemo")
		}
		added = append(added, created)
	}
	s.log.Info("demo courses seeded", logger.Int("count", len(added)))
	return added, nil
}

func (s *courseService) Modules(ctx context.Context, courseID int64) ([]*models.CourseModule, error) {
	modules, err := s.modules.GetByCourse(ctx, courseID)
	return modules, errors.Wrap(err, "course.Modules")
}

func (s *courseService) CreateModule(ctx context.Context, courseID int64, in ModuleInput) (*models.CourseModule, error) {
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}
	m := &models.CourseModule{CourseID: courseID}
	applyModule(m, in)
	created, err := s.modules.Create(ctx, m)
	return created, errors.Wrap(err, "course.CreateModule")
}

func (s *courseService) UpdateModule(ctx context.Context, courseID, moduleID int64, in ModuleInput) (*models.CourseModule, error) {
	m, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		return nil, errors.Wrap(err, "course.UpdateModule")
	}
	if m == nil || m.CourseID != courseID {
		return nil, ErrModuleNotFound
	}
	applyModule(m, in)
	updated, err := s.modules.Update(ctx, m)
	if err != nil {
		return nil, errors.Wrap(err, "course.UpdateModule")
	}
	if updated == nil {
		return nil, ErrModuleNotFound
	}
	return updated, nil
}

func (s *courseService) DeleteModule(ctx context.Context, courseID, moduleID int64) error {
	ok, err := s.modules.Delete(ctx, courseID, moduleID)
	if err != nil {
		return errors.Wrap(err, "course.DeleteModule")
	}
	if !ok {
		return ErrModuleNotFound
	}
	return nil
}

func (s *courseService) Lessons(ctx context.Context, moduleID int64) ([]*models.Lesson, error) {
	lessons, err := s.lessons.GetByModule(ctx, moduleID)
	return lessons, errors.Wrap(err, "course.Lessons")
}

func (s *courseService) CreateLesson(ctx context.Context, moduleID int64, in LessonInput) (*models.Lesson, error) {
	m, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		return nil, errors.Wrap(err, "course.CreateLesson")
	}
	if m == nil {
		return nil, ErrModuleNotFound
	}
	l := &models.Lesson{ModuleID: moduleID}
	applyLesson(l, in)
	created, err := s.lessons.Create(ctx, l)
	return created, errors.Wrap(err, "course.CreateLesson")
}

func (s *courseService) UpdateLesson(ctx context.Context, moduleID, lessonID int64, in LessonInput) (*models.Lesson, error) {
	l, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, errors.Wrap(err, "course.UpdateLesson")
	}
	if l == nil || l.ModuleID != moduleID {
		return nil, ErrLessonNotFound
	}
	applyLesson(l, in)
	updated, err := s.lessons.Update(ctx, l)
	if err != nil {
		return nil, errors.Wrap(err, "course.UpdateLesson")
	}
	if updated == nil {
		return nil, ErrLessonNotFound
	}
	return updated, nil
}

func (s *courseService) DeleteLesson(ctx context.Context, moduleID, lessonID int64) error {
	ok, err := s.lessons.Delete(ctx, moduleID, lessonID)
	if err != nil {
		return errors.Wrap(err, "course.DeleteLesson")
	}
	if !ok {
		return ErrLessonNotFound
	}
	return nil
}

func applyModule(m *models.CourseModule, in ModuleInput) {
	if in.Title != nil {
		m.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Order != nil {
		m.Order = *in.Order
	}
}

func applyLesson(l *models.Lesson, in LessonInput) {
	if in.Title != nil {
		l.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.VideoURL != nil {
		l.VideoURL = *in.VideoURL
	}
	if in.CodeSourceURL != nil {
		l.CodeSourceURL = *in.CodeSourceURL
	}
	if in.Order != nil {
		l.Order = *in.Order
	}
}
