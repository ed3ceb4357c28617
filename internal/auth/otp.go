package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// otpDigits is the length of issued one-time codes.
const otpDigits = 6

// pendingOtp is the single active verification attempt for a phone
// number. Writing a new one invalidates the previous code.
type pendingOtp struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OtpStore holds at most one pending code per phone number.
type OtpStore interface {
	// Put stores a pending code, replacing any prior one for the phone.
	Put(ctx context.Context, phone string, otp pendingOtp) error
	// Get returns the pending code or errNoPendingOtp. Expired entries
	// are still returned so the caller can report "expired" rather than
	// "invalid".
	Get(ctx context.Context, phone string) (pendingOtp, error)
	Delete(ctx context.Context, phone string) error
}

var errNoPendingOtp = errors.New("no pending code")

// RedisOtpStore keeps pending codes in Redis. Entries are retained for
// twice the logical lifetime so a late attempt reads "expired" rather
// than "invalid".
type RedisOtpStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisOtpStore creates a Redis-backed OTP store. ttl is the logical
// code lifetime.
func NewRedisOtpStore(rdb *redis.Client, ttl time.Duration) *RedisOtpStore {
	return &RedisOtpStore{rdb: rdb, ttl: ttl}
}

func otpKey(phone string) string { return "otp:" + phone }

func (s *RedisOtpStore) Put(ctx context.Context, phone string, otp pendingOtp) error {
	payload, err := json.Marshal(otp)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, otpKey(phone), payload, 2*s.ttl).Err()
}

func (s *RedisOtpStore) Get(ctx context.Context, phone string) (pendingOtp, error) {
	payload, err := s.rdb.Get(ctx, otpKey(phone)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return pendingOtp{}, errNoPendingOtp
		}
		return pendingOtp{}, err
	}
	var otp pendingOtp
	if err := json.Unmarshal(payload, &otp); err != nil {
		return pendingOtp{}, err
	}
	return otp, nil
}

func (s *RedisOtpStore) Delete(ctx context.Context, phone string) error {
	return s.rdb.Del(ctx, otpKey(phone)).Err()
}

// MemoryOtpStore is an in-memory OtpStore for demo mode and tests.
type MemoryOtpStore struct {
	mu      sync.Mutex
	pending map[string]pendingOtp
}

// NewMemoryOtpStore creates an empty in-memory OTP store.
func NewMemoryOtpStore() *MemoryOtpStore {
	return &MemoryOtpStore{pending: make(map[string]pendingOtp)}
}

func (s *MemoryOtpStore) Put(_ context.Context, phone string, otp pendingOtp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[phone] = otp
	return nil
}

func (s *MemoryOtpStore) Get(_ context.Context, phone string) (pendingOtp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	otp, ok := s.pending[phone]
	if !ok {
		return pendingOtp{}, errNoPendingOtp
	}
	return otp, nil
}

func (s *MemoryOtpStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, phone)
	return nil
}

// generateOtp produces a zero-padded numeric code.
func generateOtp() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}
