package redisdb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
)

func newRepo(t *testing.T) (*registrationRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRegistrationRepo(rdb, logger.NewNop()).(*registrationRepo), mr
}

func pending(code, phone string, ttl time.Duration) *models.PendingRegistration {
	now := time.Now()
	return &models.PendingRegistration{
		Code:      code,
		FullName:  "Ali Valiyev",
		Phone:     phone,
		Role:      models.RoleStudent,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestSaveSetsTTLAndReplacesPhone(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRepo(t)

	require.NoError(t, repo.Save(ctx, pending("AAAAAAAA", "+998901234567", 10*time.Minute)))
	ttl := mr.TTL(codeKey("AAAAAAAA"))
	assert.InDelta(t, (10 * time.Minute).Seconds(), ttl.Seconds(), 2)

	require.NoError(t, repo.Save(ctx, pending("BBBBBBBB", "+998901234567", 10*time.Minute)))
	assert.False(t, mr.Exists(codeKey("AAAAAAAA")))

	reg, err := repo.Get(ctx, "BBBBBBBB")
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, "Ali Valiyev", reg.FullName)
}

func TestExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRepo(t)

	require.NoError(t, repo.Save(ctx, pending("AAAAAAAA", "+998901234567", 10*time.Minute)))
	mr.FastForward(11 * time.Minute)

	reg, err := repo.Get(ctx, "AAAAAAAA")
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestClaimOnlyOnce(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	require.NoError(t, repo.Save(ctx, pending("AAAAAAAA", "+998901234567", 10*time.Minute)))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			reg, err := repo.Claim(ctx, "AAAAAAAA", chatID, time.Now())
			assert.NoError(t, err)
			if reg != nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(int64(100 + i))
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestClaimRejectsExpired(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	require.NoError(t, repo.Save(ctx, pending("AAAAAAAA", "+998901234567", 10*time.Minute)))

	reg, err := repo.Claim(ctx, "AAAAAAAA", 555, time.Now().Add(11*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestCompleteKeepsTTLAndConsume(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRepo(t)
	require.NoError(t, repo.Save(ctx, pending("AAAAAAAA", "+998901234567", 10*time.Minute)))

	reg, err := repo.Claim(ctx, "AAAAAAAA", 555, time.Now())
	require.NoError(t, err)
	require.NotNil(t, reg)
	require.NoError(t, repo.Complete(ctx, "AAAAAAAA", 7))
	assert.Greater(t, mr.TTL(codeKey("AAAAAAAA")), time.Duration(0))

	reg, err = repo.Consume(ctx, "AAAAAAAA")
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, int64(555), reg.ChatID)
	assert.Equal(t, int64(7), reg.UserID)
	assert.False(t, mr.Exists(phoneKey("+998901234567")))

	reg, err = repo.Consume(ctx, "AAAAAAAA")
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestCompleteMissingRegistration(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRepo(t)

	assert.ErrorIs(t, repo.Complete(ctx, "AAAAAAAA", 7), storage.ErrNotFound)

	require.NoError(t, repo.Save(ctx, pending("AAAAAAAA", "+998901234567", 10*time.Minute)))
	mr.FastForward(11 * time.Minute)
	assert.ErrorIs(t, repo.Complete(ctx, "AAAAAAAA", 7), storage.ErrNotFound)
}

func TestConcurrentSaveKeepsOneCodePerPhone(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRepo(t)

	codes := []string{"AAAAAAAA", "BBBBBBBB", "CCCCCCCC", "DDDDDDDD"}
	var wg sync.WaitGroup
	for _, code := range codes {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			assert.NoError(t, repo.Save(ctx, pending(code, "+998901234567", 10*time.Minute)))
		}(code)
	}
	wg.Wait()

	live := 0
	for _, code := range codes {
		if mr.Exists(codeKey(code)) {
			live++
		}
	}
	assert.Equal(t, 1, live)

	indexed, err := mr.Get(phoneKey("+998901234567"))
	require.NoError(t, err)
	assert.True(t, mr.Exists(codeKey(indexed)), "phone index points at the live code")
}

func TestReleaseUnbindsChat(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	require.NoError(t, repo.Save(ctx, pending("AAAAAAAA", "+998901234567", 10*time.Minute)))

	_, err := repo.Claim(ctx, "AAAAAAAA", 555, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Release(ctx, "AAAAAAAA"))

	reg, err := repo.Get(ctx, "AAAAAAAA")
	require.NoError(t, err)
	assert.False(t, reg.Claimed())
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRepo(t)
	require.NoError(t, repo.Save(ctx, pending("AAAAAAAA", "+998901111111", 10*time.Minute)))
	require.NoError(t, repo.Save(ctx, pending("BBBBBBBB", "+998902222222", 10*time.Minute)))
	mr.Set(phoneKey("+998903333333"), "CCCCCCCC")

	removed, err := repo.DeleteExpired(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.False(t, mr.Exists(phoneKey("+998903333333")))
}
