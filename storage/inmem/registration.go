package inmem

import (
	"context"
	"sync"
	"time"

	"proxedu/pkg/models"
	"proxedu/storage"
)

// RegistrationStore keeps pending registrations in memory; entries past their expiry read as missing.
type RegistrationStore struct {
	mu      sync.Mutex
	now     func() time.Time
	byCode  map[string]*models.PendingRegistration
	byPhone map[string]string
}

func NewRegistrationStore() *RegistrationStore {
	return &RegistrationStore{
		now:     time.Now,
		byCode:  make(map[string]*models.PendingRegistration),
		byPhone: make(map[string]string),
	}
}

// SetClock is used by tests that move time around the code expiry.
func (s *RegistrationStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *RegistrationStore) live(code string) *models.PendingRegistration {
	reg, ok := s.byCode[code]
	if !ok {
		return nil
	}
	if reg.Expired(s.now()) {
		s.remove(code)
		return nil
	}
	return reg
}

func (s *RegistrationStore) remove(code string) {
	reg, ok := s.byCode[code]
	if !ok {
		return
	}
	delete(s.byCode, code)
	if s.byPhone[reg.Phone] == code {
		delete(s.byPhone, reg.Phone)
	}
}

func (s *RegistrationStore) Save(ctx context.Context, reg *models.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byPhone[reg.Phone]; ok {
		s.remove(old)
	}
	r := *reg
	s.byCode[r.Code] = &r
	s.byPhone[r.Phone] = r.Code
	return nil
}

func (s *RegistrationStore) Get(ctx context.Context, code string) (*models.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.live(code)
	if reg == nil {
		return nil, nil
	}
	out := *reg
	return &out, nil
}

func (s *RegistrationStore) Claim(ctx context.Context, code string, chatID int64, now time.Time) (*models.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.live(code)
	if reg == nil || reg.Expired(now) || reg.Claimed() {
		return nil, nil
	}
	reg.ChatID = chatID
	out := *reg
	return &out, nil
}

func (s *RegistrationStore) Release(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reg, ok := s.byCode[code]; ok && !reg.Verified() {
		reg.ChatID = 0
	}
	return nil
}

func (s *RegistrationStore) Complete(ctx context.Context, code string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.live(code)
	if reg == nil {
		return storage.ErrNotFound
	}
	reg.UserID = userID
	return nil
}

func (s *RegistrationStore) Consume(ctx context.Context, code string) (*models.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.live(code)
	if reg == nil {
		return nil, nil
	}
	s.remove(code)
	return reg, nil
}

func (s *RegistrationStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for code, reg := range s.byCode {
		if reg.Expired(now) && !reg.Claimed() {
			s.remove(code)
			removed++
		}
	}
	for phone, code := range s.byPhone {
		if _, ok := s.byCode[code]; !ok {
			delete(s.byPhone, phone)
		}
	}
	return removed, nil
}
