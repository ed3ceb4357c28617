package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/oceanguard/hazard-server/internal/models"
	"go.uber.org/zap"
)

// CredentialProvider verifies credentials and manages their lifecycle.
// Failures surface as the package sentinel errors; anything else is an
// opaque upstream failure.
type CredentialProvider interface {
	// VerifyPassword authenticates the email/password pair.
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	// Register creates an unverified account. The caller still has a
	// verification step ahead; registration never auto-authenticates.
	Register(ctx context.Context, email, password string) (*models.User, error)
	// SendOtp issues a one-time code out of band. It must not reveal
	// whether the phone number is already registered.
	SendOtp(ctx context.Context, phone string) error
	// VerifyOtp redeems a pending code. Exactly one code is active per
	// phone; a newer SendOtp invalidates any prior one.
	VerifyOtp(ctx context.Context, phone, code string) (*models.User, error)
	// SignOut invalidates remote credential state, best-effort.
	SignOut(ctx context.Context, userID uuid.UUID) error
}

// OtpSender delivers a one-time code out of band (SMS gateway, etc).
type OtpSender interface {
	Send(ctx context.Context, phone, code string) error
}

// LogOtpSender writes codes to the log instead of a gateway. Used in
// development and demo mode.
type LogOtpSender struct {
	Logger *zap.SugaredLogger
}

func (s *LogOtpSender) Send(_ context.Context, phone, code string) error {
	s.Logger.Infow("OTP issued (no SMS gateway configured)", "phone", phone, "code", code)
	return nil
}
