package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"

	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/oceanguard/hazard-server/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// LocalProvider implements CredentialProvider against the service's own
// user store: bcrypt password hashes and one-time codes held in the
// OTP store.
type LocalProvider struct {
	users  UserStore
	otps   OtpStore
	sender OtpSender
	otpTTL time.Duration
	logger *zap.SugaredLogger
	clock  clockwork.Clock
}

// NewLocalProvider creates a credential provider over the given stores.
func NewLocalProvider(users UserStore, otps OtpStore, sender OtpSender,
	otpTTL time.Duration, logger *zap.SugaredLogger) *LocalProvider {
	return &LocalProvider{
		users:  users,
		otps:   otps,
		sender: sender,
		otpTTL: otpTTL,
		logger: logger,
		clock:  clockwork.NewRealClock(),
	}
}

// SetClock swaps the time source. Pass nil to reset to real time.
func (p *LocalProvider) SetClock(c clockwork.Clock) {
	if c == nil {
		p.clock = clockwork.NewRealClock()
		return
	}
	p.clock = c
}

func (p *LocalProvider) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	rec, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errUserNotFound) {
			// Burn a comparison anyway so a miss costs the same as a mismatch.
			bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000"), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if rec.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	user := rec.User
	return &user, nil
}

func (p *LocalProvider) Register(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rec := &UserRecord{
		User: models.User{
			ID:       uuid.New(),
			Email:    email,
			Role:     models.RoleCitizen,
			Verified: false,
		},
		PasswordHash: string(hash),
	}
	if err := p.users.Create(ctx, rec); err != nil {
		return nil, err
	}
	user := rec.User
	return &user, nil
}

func (p *LocalProvider) SendOtp(ctx context.Context, phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}

	code, err := generateOtp()
	if err != nil {
		return err
	}
	// Put replaces any pending code: one active attempt per phone.
	otp := pendingOtp{Code: code, ExpiresAt: p.clock.Now().Add(p.otpTTL)}
	if err := p.otps.Put(ctx, phone, otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return p.sender.Send(ctx, phone, code)
}

func (p *LocalProvider) VerifyOtp(ctx context.Context, phone, code string) (*models.User, error) {
	otp, err := p.otps.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, errNoPendingOtp) {
			return nil, ErrOtpInvalid
		}
		return nil, err
	}
	if p.clock.Now().After(otp.ExpiresAt) {
		_ = p.otps.Delete(ctx, phone)
		return nil, ErrOtpExpired
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		return nil, ErrOtpInvalid
	}
	if err := p.otps.Delete(ctx, phone); err != nil {
		return nil, err
	}

	rec, err := p.users.GetByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, errUserNotFound) {
			return nil, err
		}
		// First successful verification creates the identity.
		rec = &UserRecord{User: models.User{
			ID:       uuid.New(),
			Phone:    phone,
			Role:     models.RoleCitizen,
			Verified: true,
		}}
		if err := p.users.Create(ctx, rec); err != nil {
			return nil, err
		}
	} else if !rec.Verified {
		if err := p.users.MarkVerified(ctx, rec.ID); err != nil {
			return nil, err
		}
		rec.Verified = true
	}

	user := rec.User
	return &user, nil
}

func (p *LocalProvider) SignOut(_ context.Context, _ uuid.UUID) error {
	// Local credentials hold no remote session state to revoke.
	return nil
}
