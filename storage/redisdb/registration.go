package redisdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
)

const (
	codePrefix  = "registration:code:"
	phonePrefix = "registration:phone:"
)

// maxTxRetries bounds optimistic retries when a watched key changes underneath us.
const maxTxRetries = 5

var errSkip = errors.New("registration not eligible")

type registrationRepo struct {
	rdb *redis.Client
	log logger.ILogger
	now func() time.Time
}

func NewRegistrationRepo(rdb *redis.Client, log logger.ILogger) storage.IRegistrationStorage {
	return &registrationRepo{rdb: rdb, log: log, now: time.Now}
}

func codeKey(code string) string   { return codePrefix + code }
func phoneKey(phone string) string { return phonePrefix + phone }

func decode(data []byte) (*models.PendingRegistration, error) {
	var reg models.PendingRegistration
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepo) Save(ctx context.Context, reg *models.PendingRegistration) error {
	ttl := reg.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("registration already expired")
	}
	data, err := json.Marshal(reg)
	if err != nil {
		return err
	}

	idx := phoneKey(reg.Phone)
	err = r.watch(ctx, func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, idx).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if old != "" && old != reg.Code {
				pipe.Del(ctx, codeKey(old))
			}
			pipe.Set(ctx, codeKey(reg.Code), data, ttl)
			pipe.Set(ctx, idx, reg.Code, ttl)
			return nil
		})
		return err
	}, idx)
	if err != nil {
		r.log.Error("failed to save registration", logger.Error(err))
		return err
	}
	return nil
}

// watch runs fn under WATCH and retries while another client wins the race.
func (r *registrationRepo) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = r.rdb.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (r *registrationRepo) Get(ctx context.Context, code string) (*models.PendingRegistration, error) {
	data, err := r.rdb.Get(ctx, codeKey(code)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		r.log.Error("failed to get registration", logger.Error(err))
		return nil, err
	}
	return decode(data)
}

// update rewrites the registration under WATCH so concurrent writers cannot both succeed.
func (r *registrationRepo) update(ctx context.Context, code string, fn func(*models.PendingRegistration) error) (*models.PendingRegistration, error) {
	key := codeKey(code)
	var out *models.PendingRegistration

	err := r.watch(ctx, func(tx *redis.Tx) error {
		out = nil
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return errSkip
		}
		if err != nil {
			return err
		}
		reg, err := decode(data)
		if err != nil {
			return err
		}
		if err := fn(reg); err != nil {
			return err
		}
		data, err = json.Marshal(reg)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, data, redis.SetArgs{KeepTTL: true})
			return nil
		})
		if err == nil {
			out = reg
		}
		return err
	}, key)

	if errors.Is(err, errSkip) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("failed to update registration", logger.String("code", code), logger.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *registrationRepo) Claim(ctx context.Context, code string, chatID int64, now time.Time) (*models.PendingRegistration, error) {
	return r.update(ctx, code, func(reg *models.PendingRegistration) error {
		if reg.Expired(now) || reg.Claimed() {
			return errSkip
		}
		reg.ChatID = chatID
		return nil
	})
}

func (r *registrationRepo) Release(ctx context.Context, code string) error {
	_, err := r.update(ctx, code, func(reg *models.PendingRegistration) error {
		if reg.Verified() {
			return errSkip
		}
		reg.ChatID = 0
		return nil
	})
	return err
}

func (r *registrationRepo) Complete(ctx context.Context, code string, userID int64) error {
	reg, err := r.update(ctx, code, func(reg *models.PendingRegistration) error {
		reg.UserID = userID
		return nil
	})
	if err != nil {
		return err
	}
	if reg == nil {
		return storage.ErrNotFound
	}
	return nil
}

func (r *registrationRepo) Consume(ctx context.Context, code string) (*models.PendingRegistration, error) {
	data, err := r.rdb.GetDel(ctx, codeKey(code)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		r.log.Error("failed to consume registration", logger.Error(err))
		return nil, err
	}
	reg, err := decode(data)
	if err != nil {
		return nil, err
	}

	idx := phoneKey(reg.Phone)
	if current, err := r.rdb.Get(ctx, idx).Result(); err == nil && current == code {
		r.rdb.Del(ctx, idx)
	}
	return reg, nil
}

func (r *registrationRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	removed := 0

	iter := r.rdb.Scan(ctx, 0, codePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := r.rdb.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return removed, err
		}
		reg, err := decode(data)
		if err != nil {
			r.log.Warning("dropping undecodable registration", logger.String("key", key))
			r.rdb.Del(ctx, key)
			removed++
			continue
		}
		if reg.Expired(now) && !reg.Claimed() {
			if err := r.rdb.Del(ctx, key).Err(); err != nil {
				return removed, err
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}

	phones := r.rdb.Scan(ctx, 0, phonePrefix+"*", 100).Iterator()
	for phones.Next(ctx) {
		code, err := r.rdb.Get(ctx, phones.Val()).Result()
		if err != nil {
			continue
		}
		if n, err := r.rdb.Exists(ctx, codeKey(code)).Result(); err == nil && n == 0 {
			r.rdb.Del(ctx, phones.Val())
		}
	}
	return removed, phones.Err()
}
