package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxedu/pkg/models"
	"proxedu/storage"
)

func TestUserPhoneUnique(t *testing.T) {
	ctx := context.Background()
	db := New()

	_, err := db.User().Create(ctx, &models.User{FullName: "Ali", Phone: "+998901234567", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = db.User().Create(ctx, &models.User{FullName: "Vali", Phone: "+998901234567", Role: models.RoleStudent})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	total, err := db.User().GetTotalUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestUserReturnsCopies(t *testing.T) {
	ctx := context.Background()
	db := New()

	u, err := db.User().Create(ctx, &models.User{FullName: "Ali", Phone: "+998901234567", Role: models.RoleStudentOffline, Offline: models.NewOfflineProfile()})
	require.NoError(t, err)
	u.Offline.SetScore("1-yanvar", 5)
	u.Balance = 100

	fresh, err := db.User().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Offline.Scores)
	assert.Zero(t, fresh.Balance)
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()
	db := New()

	u, err := db.User().Create(ctx, &models.User{FullName: "Ali", Phone: "+998901234567", Role: models.RoleStudent})
	require.NoError(t, err)
	c, err := db.Course().Create(ctx, &models.Course{Title: "Go", Price: 5000, Status: models.CourseStatusActive})
	require.NoError(t, err)

	enroll := func(txn string) error {
		_, err := db.Payment().Enroll(ctx, &models.Payment{
			UserID: u.ID, Amount: c.Price, Method: models.PaymentMethodTransfer,
			Status: models.PaymentStatusCompleted, TransactionID: txn,
		}, c.ID)
		return err
	}

	assert.ErrorIs(t, enroll("ENROLL1"), storage.ErrInsufficientBalance)

	_, balance, err := db.Payment().TopUp(ctx, &models.Payment{
		UserID: u.ID, Amount: 7000, Method: models.PaymentMethodCard,
		Status: models.PaymentStatusCompleted, TransactionID: "TXN1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7000), balance)

	require.NoError(t, enroll("ENROLL2"))
	assert.ErrorIs(t, enroll("ENROLL3"), storage.ErrAlreadyEnrolled)

	u, err = db.User().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), u.Balance)
	assert.Equal(t, []int64{c.ID}, u.EnrolledCourses)

	c, err = db.Course().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.EnrolledStudents)

	sum, err := db.Payment().Sum(ctx, &u.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), sum)
}

func TestCourseDeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := New()

	c, err := db.Course().Create(ctx, &models.Course{Title: "Go"})
	require.NoError(t, err)
	m, err := db.Module().Create(ctx, &models.CourseModule{CourseID: c.ID, Title: "Intro", Order: 1})
	require.NoError(t, err)
	_, err = db.Lesson().Create(ctx, &models.Lesson{ModuleID: m.ID, Title: "Hello"})
	require.NoError(t, err)

	c, err = db.Course().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ModulesCount)

	ok, err := db.Course().Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	lessons, err := db.Lesson().GetByModule(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, lessons)
}

func TestModulesOrdered(t *testing.T) {
	ctx := context.Background()
	db := New()

	for _, order := range []int{3, 1, 2} {
		_, err := db.Module().Create(ctx, &models.CourseModule{CourseID: 1, Order: order})
		require.NoError(t, err)
	}
	modules, err := db.Module().GetByCourse(ctx, 1)
	require.NoError(t, err)
	require.Len(t, modules, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{modules[0].Order, modules[1].Order, modules[2].Order})

	ok, err := db.Module().Delete(ctx, 2, modules[0].ID)
	require.NoError(t, err)
	assert.False(t, ok, "module belongs to another course")
}

func TestRegistrationStore(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewRegistrationStore()

	first := &models.PendingRegistration{Code: "AAAAAAAA", Phone: "+998901234567", ExpiresAt: now.Add(10 * time.Minute)}
	second := &models.PendingRegistration{Code: "BBBBBBBB", Phone: "+998901234567", ExpiresAt: now.Add(10 * time.Minute)}
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))

	reg, err := s.Get(ctx, "AAAAAAAA")
	require.NoError(t, err)
	assert.Nil(t, reg, "new code replaces the old one for the same phone")

	reg, err = s.Claim(ctx, "BBBBBBBB", 555, now)
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, int64(555), reg.ChatID)

	reg, err = s.Claim(ctx, "BBBBBBBB", 777, now)
	require.NoError(t, err)
	assert.Nil(t, reg, "second claim loses")

	require.NoError(t, s.Release(ctx, "BBBBBBBB"))
	reg, err = s.Claim(ctx, "BBBBBBBB", 777, now)
	require.NoError(t, err)
	require.NotNil(t, reg)

	require.NoError(t, s.Complete(ctx, "BBBBBBBB", 9))
	reg, err = s.Consume(ctx, "BBBBBBBB")
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, int64(9), reg.UserID)

	reg, err = s.Consume(ctx, "BBBBBBBB")
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestRegistrationCompleteMissing(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewRegistrationStore()

	assert.ErrorIs(t, s.Complete(ctx, "AAAAAAAA", 9), storage.ErrNotFound)

	require.NoError(t, s.Save(ctx, &models.PendingRegistration{Code: "AAAAAAAA", Phone: "+998901111111", ExpiresAt: now.Add(time.Minute)}))
	s.SetClock(func() time.Time { return now.Add(2 * time.Minute) })
	assert.ErrorIs(t, s.Complete(ctx, "AAAAAAAA", 9), storage.ErrNotFound)
}

func TestRegistrationDeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewRegistrationStore()

	require.NoError(t, s.Save(ctx, &models.PendingRegistration{Code: "AAAAAAAA", Phone: "+998901111111", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, s.Save(ctx, &models.PendingRegistration{Code: "BBBBBBBB", Phone: "+998902222222", ExpiresAt: now.Add(time.Hour)}))

	removed, err := s.DeleteExpired(ctx, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	reg, err := s.Get(ctx, "BBBBBBBB")
	require.NoError(t, err)
	assert.NotNil(t, reg)
}
