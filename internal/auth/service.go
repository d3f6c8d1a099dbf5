// Package auth authenticates against the in-memory staff roster: email plus
// password, or a short numeric PIN. Sessions are JWTs; login attempts are
// rate limited.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	stdsync "sync"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
	clinicsync "github.com/guidari-center/guidari-backend/internal/clinic/sync"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidPIN         = errors.New("pin must be 4 to 6 digits")
)

// DefaultCommissionRate applies to newly registered professionals.
const DefaultCommissionRate = 60

type Service struct {
	sync   *clinicsync.Synchronizer
	secret []byte
	ttl    time.Duration
	logger *zap.Logger

	mu       stdsync.Mutex
	limiters map[string]*rate.Limiter
}

func NewService(s *clinicsync.Synchronizer, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		sync:     s,
		secret:   []byte(secret),
		ttl:      ttl,
		limiters: make(map[string]*rate.Limiter),
		logger:   logger,
	}
}

// allow throttles login attempts per key, so guessing against one account
// does not lock everyone else out. A short burst covers typing mistakes;
// sustained guessing is throttled to one attempt per second.
func (s *Service) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Second), 5)
		s.limiters[key] = l
	}
	return l.Allow()
}

// LoginEmail authenticates by email and password.
func (s *Service) LoginEmail(email, password string) (domain.User, string, error) {
	if !s.allow("email:" + strings.ToLower(strings.TrimSpace(email))) {
		return domain.User{}, "", ErrTooManyAttempts
	}

	users, _ := s.sync.Users()
	for _, u := range users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) && u.Password == password {
			return s.session(u)
		}
	}
	s.logger.Info("login rejected", zap.String("email", email))
	return domain.User{}, "", ErrInvalidCredentials
}

// LoginPIN authenticates by PIN. Staff without a PIN never match. PIN
// attempts carry no account identifier, so they share one bucket: keying by
// the submitted PIN would let a guesser rotate PINs past the throttle.
func (s *Service) LoginPIN(pin string) (domain.User, string, error) {
	if !s.allow("pin") {
		return domain.User{}, "", ErrTooManyAttempts
	}
	if ValidatePIN(pin) != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}

	users, _ := s.sync.Users()
	for _, u := range users {
		if u.PIN != "" && u.PIN == pin {
			return s.session(u)
		}
	}
	return domain.User{}, "", ErrInvalidCredentials
}

func (s *Service) session(u domain.User) (domain.User, string, error) {
	token, err := issueToken(u, s.secret, s.ttl)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

// Verify parses a session token against the service secret.
func (s *Service) Verify(raw string) (*Claims, error) {
	return ParseToken(raw, s.secret)
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	PIN       string
	Specialty string
}

// Register creates a new professional with a canonical identifier and the
// default role and commission rate, persisting through the normal staff save
// path. A failed remote write keeps the local registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, string, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" || in.FirstName == "" {
		return domain.User{}, "", fmt.Errorf("first name, email and password are required")
	}
	if in.PIN != "" {
		if err := ValidatePIN(in.PIN); err != nil {
			return domain.User{}, "", err
		}
	}

	users, version := s.sync.Users()
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return domain.User{}, "", ErrEmailTaken
		}
	}

	user := domain.User{
		ID:             domain.NewID(),
		Email:          email,
		Password:       in.Password,
		PIN:            in.PIN,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Specialty:      in.Specialty,
		Role:           domain.RoleProfessional,
		CommissionRate: DefaultCommissionRate,
	}
	user.Name = user.FullName()

	if _, err := s.sync.SaveStaff(ctx, append(users, user), version); err != nil {
		if !errors.Is(err, clinicsync.ErrRemoteWrite) {
			return domain.User{}, "", fmt.Errorf("register: %w", err)
		}
		s.logger.Warn("registration stored locally only", zap.Error(err))
	}

	return s.session(user)
}

// ValidatePIN enforces the 4 to 6 digit shape.
func ValidatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 6 {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return ErrInvalidPIN
		}
	}
	return nil
}
