package service

import (
	"context"
	"sync"
	"time"

	"proxedu/config"
	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/pkg/security"
	"proxedu/storage"
)

// Messenger delivers plain text to a Telegram chat.
type Messenger interface {
	SendToChat(ctx context.Context, chatID int64, text string) error
}

// Publisher fans admin notification events out to connected dashboards.
type Publisher interface {
	Publish(ctx context.Context, event models.NotificationEvent) error
}

type IServiceManager interface {
	Auth() AuthService
	User() UserService
	Course() CourseService
	Payment() PaymentService
	Message() MessageService
	Dashboard() DashboardService
	Notification() NotificationService
	SetMessenger(m Messenger)
}

type Options struct {
	Tokens    *security.TokenManager
	Publisher Publisher
	Clock     func() time.Time
}

type service struct {
	authService         AuthService
	userService         UserService
	courseService       CourseService
	paymentService      PaymentService
	messageService      MessageService
	dashboardService    DashboardService
	notificationService NotificationService
	messenger           *messengerRef
}

func New(cfg config.Config, stg storage.IStorage, regs storage.IRegistrationStorage, opts Options, log logger.ILogger) IServiceManager {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Tokens == nil {
		opts.Tokens = security.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	}
	notifications := NewNotificationService(opts.Publisher, opts.Clock, log)
	messenger := &messengerRef{}

	return &service{
		authService:         NewAuthService(cfg, stg, regs, opts.Tokens, notifications, opts.Clock, log),
		userService:         NewUserService(stg, opts.Clock, log),
		courseService:       NewCourseService(stg, notifications, log),
		paymentService:      NewPaymentService(stg, notifications, messenger, opts.Clock, log),
		messageService:      NewMessageService(stg, log),
		dashboardService:    NewDashboardService(stg, opts.Clock, log),
		notificationService: notifications,
		messenger:           messenger,
	}
}

func (s *service) Auth() AuthService                 { return s.authService }
func (s *service) User() UserService                 { return s.userService }
func (s *service) Course() CourseService             { return s.courseService }
func (s *service) Payment() PaymentService           { return s.paymentService }
func (s *service) Message() MessageService           { return s.messageService }
func (s *service) Dashboard() DashboardService       { return s.dashboardService }
func (s *service) Notification() NotificationService { return s.notificationService }

// SetMessenger attaches the bot after it has been built on top of these services.
func (s *service) SetMessenger(m Messenger) {
	s.messenger.set(m)
}

type messengerRef struct {
	mu sync.RWMutex
	m  Messenger
}

func (r *messengerRef) set(m Messenger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = m
}

func (r *messengerRef) get() Messenger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m
}
