package inmem

import (
	"context"
	"sort"

	"proxedu/pkg/models"
)

type courseRepo struct {
	db *DB
}

func (r *courseRepo) modulesCount(courseID int64) int {
	n := 0
	for _, m := range r.db.modules {
		if m.CourseID == courseID {
			n++
		}
	}
	return n
}

func (r *courseRepo) view(c *models.Course) *models.Course {
	cc := copyCourse(c)
	cc.ModulesCount = r.modulesCount(c.ID)
	return cc
}

func (r *courseRepo) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c := copyCourse(course)
	c.ID = r.db.nextID("courses")
	now := r.db.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.db.courses[c.ID] = c
	return r.view(c), nil
}

func (r *courseRepo) Update(ctx context.Context, course *models.Course) (*models.Course, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	orig, ok := r.db.courses[course.ID]
	if !ok {
		return nil, nil
	}
	c := copyCourse(course)
	c.EnrolledStudents = orig.EnrolledStudents
	c.CreatedAt = orig.CreatedAt
	c.UpdatedAt = r.db.now()
	r.db.courses[c.ID] = c
	return r.view(c), nil
}

func (r *courseRepo) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if c, ok := r.db.courses[id]; ok {
		return r.view(c), nil
	}
	return nil, nil
}

func (r *courseRepo) sorted() []*models.Course {
	courses := make([]*models.Course, 0, len(r.db.courses))
	for _, c := range r.db.courses {
		courses = append(courses, r.view(c))
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].CreatedAt.Equal(courses[j].CreatedAt) {
			return courses[i].ID > courses[j].ID
		}
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})
	return courses
}

func (r *courseRepo) GetAll(ctx context.Context) ([]*models.Course, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.sorted(), nil
}

func (r *courseRepo) GetByIDs(ctx context.Context, ids []int64) ([]*models.Course, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	courses := make([]*models.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.db.courses[id]; ok {
			courses = append(courses, r.view(c))
		}
	}
	return courses, nil
}

func (r *courseRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.courses[id]; !ok {
		return false, nil
	}
	delete(r.db.courses, id)
	for mid, m := range r.db.modules {
		if m.CourseID == id {
			r.db.deleteModule(mid)
		}
	}
	return true, nil
}

func (r *courseRepo) UpdateStatus(ctx context.Context, id int64, status string) (*models.Course, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.courses[id]
	if !ok {
		return nil, nil
	}
	c.Status = status
	c.UpdatedAt = r.db.now()
	return r.view(c), nil
}

func (r *courseRepo) GetTotal(ctx context.Context) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return len(r.db.courses), nil
}

func (r *courseRepo) GetRecent(ctx context.Context, limit int) ([]*models.Course, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	courses := r.sorted()
	if len(courses) > limit {
		courses = courses[:limit]
	}
	return courses, nil
}

// deleteModule expects db.mu to be held.
func (db *DB) deleteModule(id int64) {
	delete(db.modules, id)
	for lid, l := range db.lessons {
		if l.ModuleID == id {
			delete(db.lessons, lid)
		}
	}
}

type moduleRepo struct {
	db *DB
}

func (r *moduleRepo) Create(ctx context.Context, module *models.CourseModule) (*models.CourseModule, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m := *module
	m.ID = r.db.nextID("modules")
	now := r.db.now()
	m.CreatedAt, m.UpdatedAt = now, now
	r.db.modules[m.ID] = &m
	out := m
	return &out, nil
}

func (r *moduleRepo) Update(ctx context.Context, module *models.CourseModule) (*models.CourseModule, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	orig, ok := r.db.modules[module.ID]
	if !ok || orig.CourseID != module.CourseID {
		return nil, nil
	}
	m := *module
	m.CreatedAt = orig.CreatedAt
	m.UpdatedAt = r.db.now()
	r.db.modules[m.ID] = &m
	out := m
	return &out, nil
}

func (r *moduleRepo) GetByID(ctx context.Context, id int64) (*models.CourseModule, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	m, ok := r.db.modules[id]
	if !ok {
		return nil, nil
	}
	out := *m
	return &out, nil
}

func (r *moduleRepo) GetByCourse(ctx context.Context, courseID int64) ([]*models.CourseModule, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	modules := make([]*models.CourseModule, 0)
	for _, m := range r.db.modules {
		if m.CourseID == courseID {
			out := *m
			modules = append(modules, &out)
		}
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Order != modules[j].Order {
			return modules[i].Order < modules[j].Order
		}
		if !modules[i].CreatedAt.Equal(modules[j].CreatedAt) {
			return modules[i].CreatedAt.Before(modules[j].CreatedAt)
		}
		return modules[i].ID < modules[j].ID
	})
	return modules, nil
}

func (r *moduleRepo) Delete(ctx context.Context, courseID, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.modules[id]
	if !ok || m.CourseID != courseID {
		return false, nil
	}
	r.db.deleteModule(id)
	return true, nil
}

type lessonRepo struct {
	db *DB
}

func (r *lessonRepo) Create(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l := *lesson
	l.ID = r.db.nextID("lessons")
	now := r.db.now()
	l.CreatedAt, l.UpdatedAt = now, now
	r.db.lessons[l.ID] = &l
	out := l
	return &out, nil
}

func (r *lessonRepo) Update(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	orig, ok := r.db.lessons[lesson.ID]
	if !ok || orig.ModuleID != lesson.ModuleID {
		return nil, nil
	}
	l := *lesson
	l.CreatedAt = orig.CreatedAt
	l.UpdatedAt = r.db.now()
	r.db.lessons[l.ID] = &l
	out := l
	return &out, nil
}

func (r *lessonRepo) GetByID(ctx context.Context, id int64) (*models.Lesson, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	l, ok := r.db.lessons[id]
	if !ok {
		return nil, nil
	}
	out := *l
	return &out, nil
}

func (r *lessonRepo) GetByModule(ctx context.Context, moduleID int64) ([]*models.Lesson, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	lessons := make([]*models.Lesson, 0)
	for _, l := range r.db.lessons {
		if l.ModuleID == moduleID {
			out := *l
			lessons = append(lessons, &out)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].Order != lessons[j].Order {
			return lessons[i].Order < lessons[j].Order
		}
		if !lessons[i].CreatedAt.Equal(lessons[j].CreatedAt) {
			return lessons[i].CreatedAt.Before(lessons[j].CreatedAt)
		}
		return lessons[i].ID < lessons[j].ID
	})
	return lessons, nil
}

func (r *lessonRepo) Delete(ctx context.Context, moduleID, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l, ok := r.db.lessons[id]
	if !ok || l.ModuleID != moduleID {
		return false, nil
	}
	delete(r.db.lessons, id)
	return true, nil
}
