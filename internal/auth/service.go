// Package auth drives the authentication state machine across two
// credential methods (email+password and phone one-time-code) and owns
// the server-side session registry.
package auth

import (
	"context"
	"fmt"

	"github.com/oceanguard/hazard-server/internal/models"
	"github.com/oceanguard/hazard-server/internal/observability"
	"github.com/oceanguard/hazard-server/internal/realtime"
	"go.uber.org/zap"
)

// LoginResult is a completed authentication: the identity plus the
// bearer token for subsequent requests.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Service is the authentication state machine. Every transition into or
// out of the authenticated state is announced on the fan-out so
// connected views re-evaluate what they may show.
type Service struct {
	provider CredentialProvider
	users    UserStore
	sessions SessionStore
	tokens   *TokenIssuer
	fanout   realtime.Publisher
	metrics  *observability.Metrics
	logger   *zap.SugaredLogger
}

// NewService creates an auth service.
func NewService(provider CredentialProvider, users UserStore, sessions SessionStore, tokens *TokenIssuer,
	fanout realtime.Publisher, metrics *observability.Metrics, logger *zap.SugaredLogger) *Service {
	return &Service{
		provider: provider,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		fanout:   fanout,
		metrics:  metrics,
		logger:   logger,
	}
}

// LoginWithPassword authenticates the email/password pair and opens a
// session.
func (s *Service) LoginWithPassword(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.provider.VerifyPassword(ctx, email, password)
	if err != nil {
		s.metrics.AuthLogins.WithLabelValues("password", "failure").Inc()
		return nil, err
	}
	return s.openSession(ctx, user, "password")
}

// RegisterWithPassword creates an unverified account. The caller is
// told a verification step is still required; no session is opened.
func (s *Service) RegisterWithPassword(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	user, err := s.provider.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Account registered, verification pending", "user", user.ID)
	return user, nil
}

// StartPhoneLogin issues a one-time code. The response is identical
// whether or not the phone number is registered.
func (s *Service) StartPhoneLogin(ctx context.Context, phone string) error {
	if phone == "" {
		return fmt.Errorf("%w: phone number is required", ErrValidation)
	}
	return s.provider.SendOtp(ctx, phone)
}

// VerifyOtp redeems a pending code and opens a session.
func (s *Service) VerifyOtp(ctx context.Context, phone, code string) (*LoginResult, error) {
	if phone == "" || code == "" {
		return nil, fmt.Errorf("%w: phone and code are required", ErrValidation)
	}

	user, err := s.provider.VerifyOtp(ctx, phone, code)
	if err != nil {
		s.metrics.AuthLogins.WithLabelValues("otp", "failure").Inc()
		return nil, err
	}
	return s.openSession(ctx, user, "otp")
}

// Logout clears the session. The local clear always wins: a failing
// remote sign-out is logged, never surfaced, so local state cannot
// contradict the user's action.
func (s *Service) Logout(ctx context.Context, sessionID string, user *models.User) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Errorw("Failed to delete session record", "error", err)
	}
	if user != nil {
		if err := s.provider.SignOut(ctx, user.ID); err != nil {
			s.logger.Warnw("Remote sign-out failed, session cleared locally", "user", user.ID, "error", err)
		}
	}
	s.metrics.AuthLogouts.Inc()
	s.publishSessionEvent("logout", user)
	return nil
}

// Authenticate resolves a bearer token to its session identity.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, string, error) {
	sessionID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, "", err
	}
	user, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	return user, sessionID, nil
}

// ListUsers returns registered accounts for the user-management view.
func (s *Service) ListUsers(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	return s.users.List(ctx, limit)
}

func (s *Service) openSession(ctx context.Context, user *models.User, method string) (*LoginResult, error) {
	sessionID, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	token, err := s.tokens.Issue(user.ID, sessionID)
	if err != nil {
		// Keep the registry consistent with the failed login.
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.AuthLogins.WithLabelValues(method, "success").Inc()
	s.publishSessionEvent("login", user)
	s.logger.Infow("Session opened", "user", user.ID, "role", user.Role, "method", method)

	return &LoginResult{Token: token, User: user}, nil
}

func (s *Service) publishSessionEvent(event string, user *models.User) {
	n := realtime.Notification{Topic: realtime.TopicSessions, Event: event}
	if user != nil {
		n.EntityID = user.ID.String()
	}
	s.metrics.FanoutNotifications.WithLabelValues(realtime.TopicSessions).Inc()
	s.fanout.Publish(context.Background(), n)
}
