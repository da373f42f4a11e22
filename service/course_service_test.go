package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxedu/pkg/models"
)

func TestCourseLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Course().Create(ctx, CourseInput{Title: "Go", Level: "Expert"})
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = f.svc.Course().Create(ctx, CourseInput{Title: "Go", Level: models.LevelBeginner, Price: -1})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	c, err := f.svc.Course().Create(ctx, CourseInput{Title: "Go", Instructor: "Jasur", Level: models.LevelBeginner, Price: 1000})
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusDraft, c.Status)
	assert.Contains(t, f.pub.titles(), "Yangi kurs")

	c, err = f.svc.Course().Update(ctx, c.ID, CourseUpdate{Title: ptr("Go 2"), Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, "Go 2", c.Title)
	assert.Equal(t, int64(1000), c.Price)
	assert.Equal(t, []string{"go"}, c.Tags)

	_, err = f.svc.Course().SetStatus(ctx, c.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	c, err = f.svc.Course().SetStatus(ctx, c.ID, models.CourseStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusActive, c.Status)

	_, err = f.svc.Course().SetStatus(ctx, 9999, models.CourseStatusActive)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	m, err := f.svc.Course().CreateModule(ctx, c.ID, ModuleInput{Title: ptr("Kirish"), Order: ptr(1)})
	require.NoError(t, err)
	_, err = f.svc.Course().CreateModule(ctx, 9999, ModuleInput{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = f.svc.Course().UpdateModule(ctx, 9999, m.ID, ModuleInput{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrModuleNotFound)
	m, err = f.svc.Course().UpdateModule(ctx, c.ID, m.ID, ModuleInput{Description: ptr("desc")})
	require.NoError(t, err)
	assert.Equal(t, "Kirish", m.Title)

	l, err := f.svc.Course().CreateLesson(ctx, m.ID, LessonInput{Title: ptr("Salom"), VideoURL: ptr("https://v/1")})
	require.NoError(t, err)
	_, err = f.svc.Course().CreateLesson(ctx, 9999, LessonInput{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrModuleNotFound)

	l, err = f.svc.Course().UpdateLesson(ctx, m.ID, l.ID, LessonInput{Order: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, l.Order)
	assert.Equal(t, "https://v/1", l.VideoURL)

	list, err := f.svc.Course().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].ModulesCount)

	require.NoError(t, f.svc.Course().Delete(ctx, c.ID))
	lessons, err := f.svc.Course().Lessons(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, lessons)
	assert.ErrorIs(t, f.svc.Course().Delete(ctx, c.ID), ErrCourseNotFound)
	assert.ErrorIs(t, f.svc.Course().DeleteLesson(ctx, m.ID, l.ID), ErrLessonNotFound)
}

func TestInitDemoOnlyWhenEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.svc.Course().InitDemo(ctx)
	require.NoError(t, err)
	assert.Len(t, added, len(demoCourses))

	added, err = f.svc.Course().InitDemo(ctx)
	require.NoError(t, err)
	assert.Empty(t, added)
}
