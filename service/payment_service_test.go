package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxedu/pkg/models"
)

func seedStudent(t *testing.T, f *fixture, chatID int64) *models.User {
	t.Helper()
	u, err := f.db.User().Create(context.Background(), &models.User{
		FullName: "Ali Valiyev", Phone: "+998901234567", Role: models.RoleStudent, TelegramChatID: &chatID,
	})
	require.NoError(t, err)
	return u
}

func seedCourse(t *testing.T, f *fixture, price int64, status string) *models.Course {
	t.Helper()
	c, err := f.db.Course().Create(context.Background(), &models.Course{
		Title: "Go asoslari", Instructor: "Jasur", Price: price, Level: models.LevelBeginner, Status: status,
	})
	require.NoError(t, err)
	return c
}

func TestTopUpValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := seedStudent(t, f, 555)

	_, _, err := f.svc.Payment().TopUp(ctx, u.ID, 999, models.PaymentMethodCard, "")
	assert.ErrorIs(t, err, ErrAmountTooSmall)

	_, _, err = f.svc.Payment().TopUp(ctx, u.ID, 5000, "bitcoin", "")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, _, err = f.svc.Payment().TopUp(ctx, 9999, 5000, models.PaymentMethodCard, "")
	assert.ErrorIs(t, err, ErrUserNotFound)

	p, balance, err := f.svc.Payment().TopUp(ctx, u.ID, 5000, models.PaymentMethodClick, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance)
	assert.Equal(t, "To'lov", p.Description)
	assert.Regexp(t, `^TXN[0-9A-F]{12}$`, p.TransactionID)
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
}

func TestEnrollOrderOfChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := seedStudent(t, f, 555)
	draft := seedCourse(t, f, 1000, models.CourseStatusDraft)
	active := seedCourse(t, f, 3000, models.CourseStatusActive)

	_, err := f.svc.Payment().Enroll(ctx, u.ID, 9999)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = f.svc.Payment().Enroll(ctx, u.ID, draft.ID)
	assert.ErrorIs(t, err, ErrCourseUnavailable)

	_, err = f.svc.Payment().Enroll(ctx, u.ID, active.ID)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	var be *BalanceError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, int64(3000), be.Required)
	assert.Equal(t, int64(0), be.Current)
}

func TestEnrollSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	messenger := &recordingMessenger{}
	f.svc.SetMessenger(messenger)

	u := seedStudent(t, f, 555)
	c := seedCourse(t, f, 3000, models.CourseStatusActive)
	_, _, err := f.svc.Payment().TopUp(ctx, u.ID, 5000, models.PaymentMethodCard, "")
	require.NoError(t, err)

	res, err := f.svc.Payment().Enroll(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), res.NewBalance)
	assert.Equal(t, models.PaymentMethodTransfer, res.Payment.Method)
	assert.Regexp(t, `^ENROLL`, res.Payment.TransactionID)

	_, err = f.svc.Payment().Enroll(ctx, u.ID, c.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	courses, err := f.svc.Payment().EnrolledCourses(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, c.ID, courses[0].ID)
	assert.Zero(t, courses[0].Progress)

	c, err = f.svc.Course().Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.EnrolledStudents)

	require.Len(t, messenger.sent, 1)
	assert.Equal(t, int64(555), messenger.sent[0].chatID)
	assert.Contains(t, f.pub.titles(), "Kursga yozilish")

	history, err := f.svc.Payment().History(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	stats, err := f.svc.Payment().Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), stats.TotalPayments)
	assert.Equal(t, int64(2000), stats.CurrentBalance)

	all, err := f.svc.Payment().All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].User)
	assert.Equal(t, "Ali Valiyev", all[0].User.FullName)
}
