package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/oceanguard/hazard-server/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// demoPassword is shared by every seeded demo account.
const demoPassword = "demo-password"

// SeedDemoUsers creates one verified account per role. Used only in
// demo mode, where registration cannot produce officials or analysts.
func SeedDemoUsers(ctx context.Context, users UserStore) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	seeds := []struct {
		email string
		role  models.Role
	}{
		{"citizen@demo.oceanguard.dev", models.RoleCitizen},
		{"official@demo.oceanguard.dev", models.RoleOfficial},
		{"analyst@demo.oceanguard.dev", models.RoleAnalyst},
	}
	for _, seed := range seeds {
		rec := &UserRecord{
			User: models.User{
				ID:       uuid.New(),
				Email:    seed.email,
				Role:     seed.role,
				Verified: true,
			},
			PasswordHash: string(hash),
		}
		if err := users.Create(ctx, rec); err != nil && !errors.Is(err, ErrEmailTaken) {
			return fmt.Errorf("seed %s: %w", seed.email, err)
		}
	}
	return nil
}
