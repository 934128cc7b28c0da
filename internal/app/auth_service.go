package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/platform/metrics"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

const defaultResetTTL = time.Hour

// Session is the result of a successful registration or login.
type Session struct {
	Token string
	User  *domain.User
}

// RegisterInput carries a new account.
type RegisterInput struct {
	Email             string
	Password          string
	FirstName         string
	LastName          string
	PrimaryAreaOfWork string
}

// UpdateProfileInput carries profile changes. An empty Password keeps the
// current one.
type UpdateProfileInput struct {
	Email             string
	FirstName         string
	LastName          string
	PrimaryAreaOfWork string
	Password          string
}

// AuthService handles accounts, sessions and password resets.
type AuthService struct {
	users       ports.UserRepository
	resetTokens ports.PasswordResetTokenRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	mailer      ports.Mailer
	resetTTL    time.Duration
	metrics     *metrics.Recorder
	now         func() time.Time
}

// AuthServiceConfig contains the dependencies of the auth service.
type AuthServiceConfig struct {
	Users       ports.UserRepository
	ResetTokens ports.PasswordResetTokenRepository
	Hasher      ports.PasswordHasher
	Tokens      ports.TokenIssuer
	Mailer      ports.Mailer

	// ResetTTL is how long a password reset token stays valid. Defaults to 1h.
	ResetTTL time.Duration
	Metrics  *metrics.Recorder
}

// NewAuthService creates an auth service. Panics if a dependency is missing.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.Users == nil || cfg.ResetTokens == nil || cfg.Hasher == nil || cfg.Tokens == nil || cfg.Mailer == nil {
		panic("AuthService: repositories, hasher, token issuer and mailer are required")
	}

	ttl := cfg.ResetTTL
	if ttl <= 0 {
		ttl = defaultResetTTL
	}

	return &AuthService{
		users:       cfg.Users,
		resetTokens: cfg.ResetTokens,
		hasher:      cfg.Hasher,
		tokens:      cfg.Tokens,
		mailer:      cfg.Mailer,
		resetTTL:    ttl,
		metrics:     cfg.Metrics,
		now:         time.Now,
	}
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	area, err := domain.ParseWorkArea("primaryAreaOfWork", in.PrimaryAreaOfWork)
	if err != nil {
		return nil, err
	}
	if err := validatePassword("password", in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:             domain.NormalizeEmail(in.Email),
		PasswordHash:      hash,
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		PrimaryAreaOfWork: area,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}

	loggerFor(ctx, "app.AuthService").InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)))

	return s.session(user)
}

// Login verifies credentials. Unknown emails and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	session, err := s.login(ctx, email, password)
	s.metrics.LoginAttempted(err)
	return session, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("invalid credentials")
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, err
	}

	return s.session(user)
}

// Profile returns the actor's account.
func (s *AuthService) Profile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the actor's account. Taking an email used by another
// account fails with a conflict.
func (s *AuthService) UpdateProfile(ctx context.Context, actor domain.Actor, in UpdateProfileInput) (*domain.User, error) {
	user, err := s.Profile(ctx, actor)
	if err != nil {
		return nil, err
	}

	area, err := domain.ParseWorkArea("primaryAreaOfWork", in.PrimaryAreaOfWork)
	if err != nil {
		return nil, err
	}

	user.Email = domain.NormalizeEmail(in.Email)
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.PrimaryAreaOfWork = area

	if in.Password != "" {
		if err := validatePassword("password", in.Password); err != nil {
			return nil, err
		}
		if user.PasswordHash, err = s.hasher.Hash(in.Password); err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

// ForgotPassword issues a reset token and mails it when the email belongs to
// an account. Unknown emails succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	logger := loggerFor(ctx, "app.AuthService")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			logger.DebugContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("loading user: %w", err)
	}

	token := &domain.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().UTC().Add(s.resetTTL),
	}
	if err := s.resetTokens.Replace(ctx, token); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	err = s.mailer.SendPasswordReset(ctx, ports.PasswordResetEmail{
		RecipientEmail: user.Email,
		RecipientName:  user.FullName(),
		Token:          token.Token,
	})
	if err != nil {
		return fmt.Errorf("mailing reset token: %w", err)
	}

	logger.InfoContext(ctx, "password reset issued", slog.Uint64("user_id", uint64(user.ID)))
	return nil
}

// ResetPassword redeems a token. The token is consumed on success.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword("newPassword", newPassword); err != nil {
		return err
	}

	reset, err := s.resetTokens.GetByToken(ctx, token)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.NewValidationError("token", "is invalid")
		}
		return fmt.Errorf("loading reset token: %w", err)
	}
	if reset.Expired(s.now()) {
		return domain.NewValidationError("token", "has expired")
	}

	user, err := s.users.GetByID(ctx, reset.UserID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	if user.PasswordHash, err = s.hasher.Hash(newPassword); err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("saving password: %w", err)
	}

	if err := s.resetTokens.Delete(ctx, reset.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("consuming reset token: %w", err)
	}
	return nil
}

func (s *AuthService) session(user *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

func validatePassword(field, password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return domain.NewValidationError(field, fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return domain.NewValidationError(field, fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}
