package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxedu/pkg/models"
	"proxedu/storage"
)

var codeFormat = regexp.MustCompile(`^[0-9A-F]{8}$`)

func TestRegisterIssuesCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket := f.register(t, "90 123 45 67")

	assert.Regexp(t, codeFormat, ticket.Code)
	assert.Equal(t, f.clock().Add(10*time.Minute), ticket.ExpiresAt)
	assert.Equal(t, "https://t.me/activlarBot?start="+ticket.Code, ticket.BotURL)

	reg, err := f.regs.Get(ctx, ticket.Code)
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, "+998901234567", reg.Phone)
	assert.Equal(t, models.RoleStudent, reg.Role)
	assert.NotEqual(t, "secret1", reg.PasswordHash)
	assert.False(t, reg.Claimed())
}

func TestRegisterDuplicatePhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.db.User().Create(ctx, &models.User{FullName: "Bor", Phone: "+998901234567", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = f.svc.Auth().Register(ctx, RegisterInput{FullName: "Ali Valiyev", Phone: "+998901234567", Password: "secret1"})
	assert.ErrorIs(t, err, ErrDuplicatePhone)

	removed, err := f.regs.DeleteExpired(ctx, f.clock().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed, "nothing should have been stored")
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Auth().Register(context.Background(), RegisterInput{
		FullName: "Ali", Phone: "+998901234567", Password: "secret1", Role: models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegisterReplacesPreviousCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.register(t, "+998901234567")
	second := f.register(t, "+998901234567")
	require.NotEqual(t, first.Code, second.Code)

	_, err := f.svc.Auth().Verify(ctx, first.Code, 555)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestCheckBeforeVerifyIsReadOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.register(t, "+998901234567")

	for i := 0; i < 3; i++ {
		_, err := f.svc.Auth().Check(ctx, ticket.Code)
		assert.ErrorIs(t, err, ErrNotVerified)
	}

	reg, err := f.regs.Get(ctx, ticket.Code)
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Zero(t, reg.ChatID)
	assert.Zero(t, reg.UserID)
}

func TestRegistrationRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.register(t, "+998901234567")

	verified, err := f.svc.Auth().Verify(ctx, ticket.Code, 555)
	require.NoError(t, err)
	require.NotEmpty(t, verified.Token)
	assert.Equal(t, "Ali Valiyev", verified.User.FullName)
	require.NotNil(t, verified.User.TelegramChatID)
	assert.Equal(t, int64(555), *verified.User.TelegramChatID)
	assert.Contains(t, f.pub.titles(), "Yangi foydalanuvchi")

	checked, err := f.svc.Auth().Check(ctx, ticket.Code)
	require.NoError(t, err)
	assert.Equal(t, verified.User.ID, checked.User.ID)

	claims, err := f.svc.Auth().ParseToken(checked.Token)
	require.NoError(t, err)
	assert.Equal(t, verified.User.ID, claims.UserID)
	assert.Equal(t, "+998901234567", claims.Phone)
	assert.Equal(t, models.RoleStudent, claims.Role)

	_, err = f.svc.Auth().Verify(ctx, ticket.Code, 555)
	assert.ErrorIs(t, err, ErrCodeNotFound)

	_, err = f.svc.Auth().Check(ctx, ticket.Code)
	assert.ErrorIs(t, err, ErrCodeNotFound)

	login, err := f.svc.Auth().Login(ctx, "+998 90 123 45 67", "secret1")
	require.NoError(t, err)
	assert.Equal(t, verified.User.ID, login.User.ID)
}

func TestCheckKeepsCodeWhenUserLoadFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := &flakyUsers{IUserStorage: f.db.User()}
	f.rebuild(flakyStorage{IStorage: f.db, users: users}, f.regs)

	ticket := f.register(t, "+998901234567")
	verified, err := f.svc.Auth().Verify(ctx, ticket.Code, 555)
	require.NoError(t, err)

	users.failNext(1, errors.New("db unreachable"))
	_, err = f.svc.Auth().Check(ctx, ticket.Code)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db unreachable")

	checked, err := f.svc.Auth().Check(ctx, ticket.Code)
	require.NoError(t, err)
	assert.Equal(t, verified.User.ID, checked.User.ID)
	assert.NotEmpty(t, checked.Token)

	_, err = f.svc.Auth().Check(ctx, ticket.Code)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestVerifyFailsWhenRegistrationNotCompleted(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "registration gone", err: storage.ErrNotFound, wantErr: ErrCodeNotFound},
		{name: "store down", err: errors.New("redis down")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.rebuild(f.db, failingCompletions{RegistrationStore: f.regs, err: tc.err})

			ticket := f.register(t, "+998901234567")
			res, err := f.svc.Auth().Verify(ctx, ticket.Code, 555)
			require.Error(t, err)
			assert.Nil(t, res)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.ErrorIs(t, err, tc.err)
			}
			assert.NotContains(t, f.pub.titles(), "Yangi foydalanuvchi")
		})
	}
}

func TestVerifyOfflineStudentGetsProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.Auth().Register(ctx, RegisterInput{
		FullName: "Ali", Phone: "+998901234567", Password: "secret1", Role: models.RoleStudentOffline,
	})
	require.NoError(t, err)

	res, err := f.svc.Auth().Verify(ctx, ticket.Code, 555)
	require.NoError(t, err)
	require.NotNil(t, res.User.Offline)
	assert.Equal(t, 1, res.User.Offline.Step)
}

func TestVerifyExpiredCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.register(t, "+998901234567")

	f.advance(10*time.Minute + time.Second)

	_, err := f.svc.Auth().Verify(ctx, ticket.Code, 555)
	assert.ErrorIs(t, err, ErrCodeNotFound)

	total, err := f.db.User().GetTotalUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = f.svc.Auth().Check(ctx, ticket.Code)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestVerifyUnknownCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Auth().Verify(context.Background(), "DEADBEEF", 555)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestVerifyPhoneTakenMeanwhile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.register(t, "+998901234567")

	_, err := f.db.User().Create(ctx, &models.User{FullName: "Bor", Phone: "+998901234567", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = f.svc.Auth().Verify(ctx, ticket.Code, 555)
	assert.ErrorIs(t, err, ErrDuplicatePhone)

	reg, err := f.regs.Get(ctx, ticket.Code)
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.False(t, reg.Claimed(), "claim must be released")
}

func TestCleanupRemovesExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "+998901111111")
	f.register(t, "+998902222222")

	removed, err := f.svc.Auth().Cleanup(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	f.advance(11 * time.Minute)
	removed, err = f.svc.Auth().Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

func TestLoginAndChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.User().Create(ctx, CreateUserInput{
		FullName: "Admin", Phone: "901112233", Password: "old-pass", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	_, err = f.svc.Auth().Login(ctx, "901112233", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Auth().Login(ctx, "909999999", "old-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, f.svc.Auth().ChangePassword(ctx, user.ID, "wrong", "new-pass"), ErrWrongPassword)
	require.NoError(t, f.svc.Auth().ChangePassword(ctx, user.ID, "old-pass", "new-pass"))

	res, err := f.svc.Auth().Login(ctx, "+998901112233", "new-pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	_, err = f.svc.Auth().Profile(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
