package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"proxedu/config"
	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/storage"
	"proxedu/storage/inmem"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.NotificationEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event models.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) titles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		if e.Notification != nil {
			out = append(out, e.Notification.Title)
		}
	}
	return out
}

type sentMessage struct {
	chatID int64
	text   string
}

type recordingMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (m *recordingMessenger) SendToChat(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

type fixture struct {
	mu   sync.Mutex
	now  time.Time
	cfg  config.Config
	db   *inmem.DB
	regs *inmem.RegistrationStore
	pub  *recordingPublisher
	svc  IServiceManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		now: time.Date(2025, time.October, 18, 10, 0, 0, 0, time.UTC),
		cfg: config.Config{
			JWTSecret:           "test-secret",
			JWTIssuer:           "proxedu",
			TokenTTL:            7 * 24 * time.Hour,
			RegistrationCodeTTL: 10 * time.Minute,
			TelegramBotUsername: "activlarBot",
		},
		db:   inmem.New(),
		regs: inmem.NewRegistrationStore(),
		pub:  &recordingPublisher{},
	}
	f.regs.SetClock(f.clock)
	f.svc = New(f.cfg, f.db, f.regs, Options{Publisher: f.pub, Clock: f.clock}, logger.NewNop())
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fixture) register(t *testing.T, phone string) *models.RegistrationTicket {
	t.Helper()
	ticket, err := f.svc.Auth().Register(context.Background(), RegisterInput{
		FullName: "Ali Valiyev",
		Phone:    phone,
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return ticket
}

// flakyUsers fails the next failGets GetByID calls.
type flakyUsers struct {
	storage.IUserStorage
	mu       sync.Mutex
	failGets int
	err      error
}

func (u *flakyUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u.mu.Lock()
	if u.failGets > 0 {
		u.failGets--
		u.mu.Unlock()
		return nil, u.err
	}
	u.mu.Unlock()
	return u.IUserStorage.GetByID(ctx, id)
}

func (u *flakyUsers) failNext(n int, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failGets = n
	u.err = err
}

type flakyStorage struct {
	storage.IStorage
	users *flakyUsers
}

func (s flakyStorage) User() storage.IUserStorage { return s.users }

// failingCompletions wraps the registration store and rejects Complete.
type failingCompletions struct {
	*inmem.RegistrationStore
	err error
}

func (r failingCompletions) Complete(ctx context.Context, code string, userID int64) error {
	return r.err
}

// rebuild swaps the storage seen by the services and keeps the fixture clock.
func (f *fixture) rebuild(stg storage.IStorage, regs storage.IRegistrationStorage) {
	f.svc = New(f.cfg, stg, regs, Options{Publisher: f.pub, Clock: f.clock}, logger.NewNop())
}
