package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"proxedu/config"
	"proxedu/pkg/logger"
	"proxedu/pkg/metrics"
	"proxedu/pkg/models"
	"proxedu/pkg/phone"
	"proxedu/pkg/security"
	"proxedu/storage"
)

type RegisterInput struct {
	FullName string
	Phone    string
	Password string
	Role     string
}

type AuthResult struct {
	Token string
	User  *models.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.RegistrationTicket, error)
	Verify(ctx context.Context, code string, chatID int64) (*AuthResult, error)
	Check(ctx context.Context, code string) (*AuthResult, error)
	Cleanup(ctx context.Context) (int, error)
	Login(ctx context.Context, phone, password string) (*AuthResult, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	ParseToken(token string) (*security.Claims, error)
}

type authService struct {
	cfg    config.Config
	users  storage.IUserStorage
	regs   storage.IRegistrationStorage
	tokens *security.TokenManager
	notify NotificationService
	now    func() time.Time
	log    logger.ILogger
}

func NewAuthService(cfg config.Config, stg storage.IStorage, regs storage.IRegistrationStorage, tokens *security.TokenManager,
	notify NotificationService, clock func() time.Time, log logger.ILogger) AuthService {
	return &authService{
		cfg:    cfg,
		users:  stg.User(),
		regs:   regs,
		tokens: tokens,
		notify: notify,
		now:    clock,
		log:    log,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.RegistrationTicket, error) {
	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleStudentOffline {
		return nil, ErrInvalidRole
	}

	p := phone.Normalize(in.Phone)
	existing, err := s.users.GetByPhone(ctx, p)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Register")
	}
	if existing != nil {
		return nil, ErrDuplicatePhone
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Register: hash password")
	}

	code, err := s.freeCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	reg := &models.PendingRegistration{
		Code:         code,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        p,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.cfg.RegistrationCodeTTL),
	}
	if err := s.regs.Save(ctx, reg); err != nil {
		return nil, errors.Wrap(err, "auth.Register: save pending registration")
	}

	metrics.RegistrationsIssued.Inc()
	s.log.Info("registration code issued", logger.String("phone", p), logger.String("code", code))

	return &models.RegistrationTicket{
		Code:      code,
		BotURL:    s.cfg.BotURL() + "?start=" + code,
		ExpiresAt: reg.ExpiresAt,
	}, nil
}

// freeCode retries on the rare collision with a live code.
func (s *authService) freeCode(ctx context.Context) (string, error) {
	for i := 0; i < 3; i++ {
		code := security.NewRegistrationCode()
		existing, err := s.regs.Get(ctx, code)
		if err != nil {
			return "", errors.Wrap(err, "auth.Register: lookup code")
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", errors.New("auth.Register: could not allocate a free code")
}

func (s *authService) Verify(ctx context.Context, code string, chatID int64) (*AuthResult, error) {
	code = strings.TrimSpace(code)

	reg, err := s.regs.Claim(ctx, code, chatID, s.now())
	if err != nil {
		return nil, errors.Wrap(err, "auth.Verify: claim")
	}
	if reg == nil {
		return nil, ErrCodeNotFound
	}

	user := &models.User{
		FullName:       reg.FullName,
		Phone:          reg.Phone,
		PasswordHash:   reg.PasswordHash,
		TelegramChatID: &chatID,
	}
	user.SetRole(reg.Role)

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if rerr := s.regs.Release(ctx, code); rerr != nil {
			s.log.Error("failed to release registration claim", logger.String("code", code), logger.Error(rerr))
		}
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrDuplicatePhone
		}
		return nil, errors.Wrap(err, "auth.Verify: create user")
	}

	// Check redeems the code through the user id recorded here.
	if err := s.regs.Complete(ctx, code, created.ID); err != nil {
		s.log.Error("failed to mark registration verified",
			logger.String("code", code),
			logger.Int64("user_id", created.ID),
			logger.Error(err),
		)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, errors.Wrap(err, "auth.Verify: complete")
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Verify: issue token")
	}

	metrics.RegistrationsVerified.Inc()
	s.log.Info("registration verified",
		logger.Int64("user_id", created.ID),
		logger.Int64("chat_id", chatID),
	)
	s.notify.Notify(ctx, "Yangi foydalanuvchi",
		fmt.Sprintf("%s (%s) Telegram orqali ro'yxatdan o'tdi", created.FullName, created.Phone))

	return &AuthResult{Token: token, User: created}, nil
}

func (s *authService) Check(ctx context.Context, code string) (*AuthResult, error) {
	code = strings.TrimSpace(code)

	reg, err := s.regs.Get(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Check")
	}
	if reg == nil || reg.Expired(s.now()) {
		metrics.RegistrationChecks.WithLabelValues("not_found").Inc()
		return nil, ErrCodeNotFound
	}
	if !reg.Verified() {
		metrics.RegistrationChecks.WithLabelValues("pending").Inc()
		return nil, ErrNotVerified
	}

	// Consume only once the token exists; a failed load leaves the code redeemable.
	user, err := s.users.GetByID(ctx, reg.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Check: load user")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Check: issue token")
	}

	consumed, err := s.regs.Consume(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Check: consume")
	}
	if consumed == nil || !consumed.Verified() {
		metrics.RegistrationChecks.WithLabelValues("not_found").Inc()
		return nil, ErrCodeNotFound
	}
	metrics.RegistrationChecks.WithLabelValues("verified").Inc()
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) Cleanup(ctx context.Context) (int, error) {
	removed, err := s.regs.DeleteExpired(ctx, s.now())
	if err != nil {
		return removed, errors.Wrap(err, "auth.Cleanup")
	}
	if removed > 0 {
		metrics.RegistrationsCleaned.Add(float64(removed))
		s.log.Info("expired registrations removed", logger.Int("count", removed))
	}
	return removed, nil
}

func (s *authService) Login(ctx context.Context, rawPhone, password string) (*AuthResult, error) {
	user, err := s.users.GetByPhone(ctx, phone.Normalize(rawPhone))
	if err != nil {
		return nil, errors.Wrap(err, "auth.Login")
	}
	if user == nil || !security.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Login: issue token")
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "auth.Profile")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !security.CheckPassword(user.PasswordHash, current) {
		return ErrWrongPassword
	}
	hash, err := security.HashPassword(next)
	if err != nil {
		return errors.Wrap(err, "auth.ChangePassword: hash")
	}
	return errors.Wrap(s.users.UpdatePassword(ctx, userID, hash), "auth.ChangePassword")
}

func (s *authService) ParseToken(token string) (*security.Claims, error) {
	return s.tokens.Parse(token)
}
