package client

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type State int

const (
	StateIdle State = iota
	StateCodeIssued
	StateVerified
	StateExpired
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCodeIssued:
		return "code_issued"
	case StateVerified:
		return "verified"
	case StateExpired:
		return "expired"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

func (s State) Terminal() bool {
	return s == StateVerified || s == StateExpired || s == StateFailed
}

var (
	ErrExpired    = errors.New("registration code expired")
	ErrNotStarted = errors.New("registration not started")
	ErrFinished   = errors.New("registration attempt already finished")
)

// Registrar is the part of the API a Session talks to.
type Registrar interface {
	Register(ctx context.Context, req RegisterRequest) (*Ticket, error)
	Check(ctx context.Context, code string) (*AuthResponse, error)
}

// Session drives one registration attempt: issue a code, then poll until the
// code is confirmed in Telegram or its countdown runs out.
type Session struct {
	api      Registrar
	tokens   TokenStore
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	state  State
	ticket *Ticket
	result *AuthResponse
	err    error
	done   chan struct{}
}

func NewSession(api Registrar, tokens TokenStore, interval time.Duration) *Session {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}
	return &Session{
		api:      api,
		tokens:   tokens,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

func (s *Session) Start(ctx context.Context, req RegisterRequest) (*Ticket, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil, ErrFinished
	}
	s.mu.Unlock()

	ticket, err := s.api.Register(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.finishLocked(StateFailed, err)
		return nil, err
	}
	s.ticket = ticket
	s.state = StateCodeIssued
	return ticket, nil
}

// Wait polls until the attempt reaches a terminal state or ctx is cancelled.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.state == StateIdle:
		s.mu.Unlock()
		return ErrNotStarted
	case s.state.Terminal():
		err := s.err
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	countdown := time.NewTimer(s.Remaining())
	defer countdown.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return s.Err()
		case <-countdown.C:
			s.finish(StateExpired, ErrExpired)
			return s.Err()
		case <-ticker.C:
			if _, err := s.CheckNow(ctx); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

// CheckNow asks the backend once; terminal answers move the session just like Wait does.
func (s *Session) CheckNow(ctx context.Context) (State, error) {
	s.mu.Lock()
	switch {
	case s.state == StateIdle:
		s.mu.Unlock()
		return StateIdle, ErrNotStarted
	case s.state.Terminal():
		state, err := s.state, s.err
		s.mu.Unlock()
		return state, err
	}
	code := s.ticket.Code
	s.mu.Unlock()

	if s.Remaining() <= 0 {
		s.finish(StateExpired, ErrExpired)
		return s.State(), s.Err()
	}

	resp, err := s.api.Check(ctx, code)
	switch {
	case err != nil && ctx.Err() != nil:
		return s.State(), ctx.Err()
	case err != nil:
		// A 4xx answer reads as "not verified yet"; only server failures end the attempt.
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			break
		}
		s.finish(StateFailed, err)
	case resp.Success:
		if serr := s.tokens.Save(resp.Token); serr != nil {
			s.finish(StateFailed, serr)
			break
		}
		s.mu.Lock()
		s.result = resp
		s.finishLocked(StateVerified, nil)
		s.mu.Unlock()
	}
	return s.State(), s.Err()
}

func (s *Session) finish(state State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked(state, err)
}

func (s *Session) finishLocked(state State, err error) {
	if s.state.Terminal() {
		return
	}
	s.state = state
	s.err = err
	close(s.done)
}

// Remaining is the countdown shown to the user.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticket == nil {
		return 0
	}
	left := s.ticket.ExpiresAt.Sub(s.now())
	if left < 0 {
		return 0
	}
	return left
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) Ticket() *Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticket
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return ""
	}
	return s.result.Token
}

func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	return s.result.User
}
