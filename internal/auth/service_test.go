package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/oceanguard/hazard-server/internal/models"
	"github.com/oceanguard/hazard-server/internal/observability"
	"github.com/oceanguard/hazard-server/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// captureSender records issued codes instead of sending them.
type captureSender struct {
	phone string
	code  string
	err   error
}

func (s *captureSender) Send(_ context.Context, phone, code string) error {
	s.phone = phone
	s.code = code
	return s.err
}

type authFixture struct {
	svc      *Service
	provider *LocalProvider
	users    *MemoryUserStore
	sessions *MemorySessionStore
	sender   *captureSender
	hub      *realtime.Hub
	clock    *clockwork.FakeClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	logger := zap.NewNop().Sugar()
	users := NewMemoryUserStore()
	sessions := NewMemorySessionStore()
	sender := &captureSender{}
	clock := clockwork.NewFakeClock()

	provider := NewLocalProvider(users, NewMemoryOtpStore(), sender, 5*time.Minute, logger)
	provider.SetClock(clock)

	hub := realtime.NewHub(logger)
	tokens := NewTokenIssuer("test-secret", time.Hour)
	svc := NewService(provider, users, sessions, tokens, hub,
		observability.NewMetricsForTesting(), logger)

	return &authFixture{
		svc:      svc,
		provider: provider,
		users:    users,
		sessions: sessions,
		sender:   sender,
		hub:      hub,
		clock:    clock,
	}
}

func (f *authFixture) register(t *testing.T, email, password string) *models.User {
	t.Helper()
	user, err := f.svc.RegisterWithPassword(context.Background(), email, password)
	require.NoError(t, err)
	return user
}

func TestPasswordLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "citizen@example.com", "correct horse battery")

	res, err := f.svc.LoginWithPassword(ctx, "citizen@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "citizen@example.com", res.User.Email)
	assert.Equal(t, models.RoleCitizen, res.User.Role)

	// The token resolves back to the same identity.
	user, _, err := f.svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)
}

func TestPasswordLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "citizen@example.com", "correct horse battery")

	_, err := f.svc.LoginWithPassword(ctx, "citizen@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.LoginWithPassword(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordLoginValidation(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.LoginWithPassword(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterDoesNotOpenSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user := f.register(t, "new@example.com", "long enough pass")
	assert.False(t, user.Verified)

	// No session exists until the account actually logs in.
	listed, err := f.svc.ListUsers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, user.ID, listed[0].ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "dup@example.com", "long enough pass")

	_, err := f.svc.RegisterWithPassword(context.Background(), "dup@example.com", "another password")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterShortPassword(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.RegisterWithPassword(context.Background(), "short@example.com", "short")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPhoneLoginRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.StartPhoneLogin(ctx, "+919876543210"))
	require.Len(t, f.sender.code, otpDigits)

	res, err := f.svc.VerifyOtp(ctx, "+919876543210", f.sender.code)
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", res.User.Phone)
	assert.True(t, res.User.Verified)
	assert.Equal(t, models.RoleCitizen, res.User.Role)

	// The code is single-use.
	_, err = f.svc.VerifyOtp(ctx, "+919876543210", f.sender.code)
	assert.ErrorIs(t, err, ErrOtpInvalid)
}

func TestPhoneLoginRejectsBadNumber(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.StartPhoneLogin(context.Background(), "not-a-phone")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestOtpWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.StartPhoneLogin(ctx, "+919876543210"))
	wrong := "000000"
	if f.sender.code == wrong {
		wrong = "000001"
	}
	_, err := f.svc.VerifyOtp(ctx, "+919876543210", wrong)
	assert.ErrorIs(t, err, ErrOtpInvalid)
}

func TestOtpExpiry(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.StartPhoneLogin(ctx, "+919876543210"))
	code := f.sender.code

	f.clock.Advance(6 * time.Minute)
	_, err := f.svc.VerifyOtp(ctx, "+919876543210", code)
	assert.ErrorIs(t, err, ErrOtpExpired)
}

func TestNewCodeInvalidatesPrevious(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.StartPhoneLogin(ctx, "+919876543210"))
	first := f.sender.code
	require.NoError(t, f.svc.StartPhoneLogin(ctx, "+919876543210"))
	second := f.sender.code

	if first != second {
		_, err := f.svc.VerifyOtp(ctx, "+919876543210", first)
		assert.ErrorIs(t, err, ErrOtpInvalid)
	}
	_, err := f.svc.VerifyOtp(ctx, "+919876543210", second)
	assert.NoError(t, err)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "citizen@example.com", "correct horse battery")

	res, err := f.svc.LoginWithPassword(ctx, "citizen@example.com", "correct horse battery")
	require.NoError(t, err)

	_, sessionID, err := f.svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, sessionID, res.User))

	// The token still parses but the session behind it is gone.
	_, _, err = f.svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLogoutSurvivesProviderFailure(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "citizen@example.com", "correct horse battery")

	res, err := f.svc.LoginWithPassword(ctx, "citizen@example.com", "correct horse battery")
	require.NoError(t, err)
	_, sessionID, err := f.svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	failing := &failingProvider{CredentialProvider: f.provider}
	svc := NewService(failing, f.users, f.sessions, f.svc.tokens, f.hub,
		observability.NewMetricsForTesting(), zap.NewNop().Sugar())

	require.NoError(t, svc.Logout(ctx, sessionID, res.User))
	_, _, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionEventsAnnounced(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "citizen@example.com", "correct horse battery")

	sub := f.hub.Subscribe(realtime.TopicSessions)
	defer sub.Unsubscribe()

	res, err := f.svc.LoginWithPassword(ctx, "citizen@example.com", "correct horse battery")
	require.NoError(t, err)

	select {
	case n := <-sub.C():
		assert.Equal(t, "login", n.Event)
		assert.Equal(t, res.User.ID.String(), n.EntityID)
	case <-time.After(time.Second):
		t.Fatal("no login notification")
	}

	_, sessionID, err := f.svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, sessionID, res.User))

	select {
	case n := <-sub.C():
		assert.Equal(t, "logout", n.Event)
	case <-time.After(time.Second):
		t.Fatal("no logout notification")
	}
}

func TestAuthenticateRejectsForgedToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	forged := NewTokenIssuer("other-secret", time.Hour)
	token, err := forged.Issue(uuid.New(), uuid.NewString())
	require.NoError(t, err)

	_, _, authErr := f.svc.Authenticate(ctx, token)
	assert.ErrorIs(t, authErr, ErrNoSession)
}

// failingProvider wraps a provider and fails SignOut.
type failingProvider struct {
	CredentialProvider
}

func (p *failingProvider) SignOut(context.Context, uuid.UUID) error {
	return errors.New("gateway unavailable")
}
