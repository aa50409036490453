package seed

import (
	"context"
	"errors"
	"fmt"

	"intakedesk/internal/store"
	"intakedesk/pkg/types"

	"github.com/k0kubun/pp"
	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin ensures the bootstrap admin account exists. The password is a
// temporary one, the account is flagged to change it on first login. An
// existing account with the same email is left alone.
func SeedAdmin(ctx context.Context, userRepo *store.UserRepository, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("set ADMIN_EMAIL and ADMIN_PASSWORD")
	}

	existing, err := userRepo.UserByEmail(ctx, email)
	if err == nil {
		fmt.Printf("Admin account already exists: %s\n", existing.Email)
		return nil
	}
	if !errors.Is(err, types.ErrUserNotFound) {
		return fmt.Errorf("failed to fetch admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &types.User{
		Email:              email,
		PasswordHash:       string(hash),
		Role:               types.RoleAdmin,
		MustChangePassword: true,
		IsActive:           true,
	}

	if err := userRepo.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	pp.Println(admin.ID, admin.Email, admin.Role)

	return nil
}

// SeedSettings creates the settings row when missing so the intake endpoint
// never has to bootstrap it under load.
func SeedSettings(ctx context.Context, settingsRepo *store.SettingsRepository) error {
	settings, err := settingsRepo.Settings(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	fmt.Printf("Settings ready, maintenance mode: %t\n", settings.MaintenanceMode)
	return nil
}
