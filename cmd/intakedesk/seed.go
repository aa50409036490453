package main

import (
	"context"
	"fmt"

	"intakedesk/internal/db"
	"intakedesk/internal/seed"
	"intakedesk/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with the admin account and default settings",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		usersRepo := store.NewUserRepository(pool)
		settingsRepo := store.NewSettingsRepository(pool)

		logrus.Info("Seeding admin account...")
		if err := seed.SeedAdmin(ctx, usersRepo, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin account: %w", err)
		}

		logrus.Info("Seeding settings...")
		if err := seed.SeedSettings(ctx, settingsRepo); err != nil {
			return fmt.Errorf("failed to seed settings: %w", err)
		}

		logrus.Info("Seed complete")

		return nil
	},
}
