package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oceanguard/hazard-server/internal/models"
)

// errUserNotFound is internal to the provider; it is never surfaced
// directly so lookups cannot be used for account enumeration.
var errUserNotFound = errors.New("user not found")

// UserRecord is a stored account: the public identity plus the
// password hash for the password method (empty for phone accounts).
type UserRecord struct {
	models.User
	PasswordHash string
}

// UserStore persists accounts. Roles are assigned server-side (seeded
// or changed by operators directly in the store), never by clients.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetByPhone(ctx context.Context, phone string) (*UserRecord, error)
	// Create inserts a new account; ErrEmailTaken when the email is
	// already registered.
	Create(ctx context.Context, rec *UserRecord) error
	// MarkVerified flips the verified flag after a completed
	// verification step.
	MarkVerified(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit int) ([]models.User, error)
}

// PostgresUserStore implements UserStore on a pgx connection pool.
type PostgresUserStore struct {
	db *pgxpool.Pool
}

// NewPostgresUserStore creates a Postgres-backed user store.
func NewPostgresUserStore(db *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `id, COALESCE(email, ''), COALESCE(phone, ''), role, verified, COALESCE(password_hash, '')`

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return s.getBy(ctx, "email", email)
}

func (s *PostgresUserStore) GetByPhone(ctx context.Context, phone string) (*UserRecord, error) {
	return s.getBy(ctx, "phone", phone)
}

func (s *PostgresUserStore) getBy(ctx context.Context, column, value string) (*UserRecord, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	var rec UserRecord
	err := s.db.QueryRow(ctx, query, value).Scan(
		&rec.ID, &rec.Email, &rec.Phone, &rec.Role, &rec.Verified, &rec.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return &rec, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, rec *UserRecord) error {
	query := `
		INSERT INTO users (id, email, phone, role, verified, password_hash)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, NULLIF($6, ''))
	`

	_, err := s.db.Exec(ctx, query,
		rec.ID, rec.Email, rec.Phone, rec.Role, rec.Verified, rec.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) List(ctx context.Context, limit int) ([]models.User, error) {
	query := `
		SELECT id, COALESCE(email, ''), COALESCE(phone, ''), role, verified
		FROM users
		ORDER BY email, phone
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Phone, &u.Role, &u.Verified); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// MemoryUserStore is an in-memory UserStore for demo mode and tests.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*UserRecord
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]*UserRecord)}
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.users {
		if rec.Email != "" && strings.EqualFold(rec.Email, email) {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, errUserNotFound
}

func (s *MemoryUserStore) GetByPhone(_ context.Context, phone string) (*UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.users {
		if rec.Phone == phone {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, errUserNotFound
}

func (s *MemoryUserStore) Create(_ context.Context, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if rec.Email != "" && strings.EqualFold(existing.Email, rec.Email) {
			return ErrEmailTaken
		}
	}
	cp := *rec
	s.users[rec.ID] = &cp
	return nil
}

func (s *MemoryUserStore) MarkVerified(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.users[id]; ok {
		rec.Verified = true
	}
	return nil
}

func (s *MemoryUserStore) List(_ context.Context, limit int) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, rec := range s.users {
		out = append(out, rec.User)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
