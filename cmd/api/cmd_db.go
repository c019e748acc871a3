package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/db"
	infraRepo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/repository"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/security"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/slug"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

var defaultCategories = []string{"Sneakers", "Streetwear", "Accessories", "Collectibles"}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		a.log.Info("running migrations")
		return db.Migrate(a.db)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the super-admin and default categories if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		ctx := cmd.Context()
		if err := seedSuperAdmin(ctx, a); err != nil {
			return err
		}
		return seedCategories(ctx, a)
	},
}

func seedSuperAdmin(ctx context.Context, a *app) error {
	email := strings.ToLower(strings.TrimSpace(a.cfg.SeedAdminEmail))
	if email == "" || a.cfg.SeedAdminPassword == "" {
		a.log.Warn("SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD not set, skipping super-admin")
		return nil
	}

	users := infraRepo.NewUserGormRepository(a.db)
	if _, err := users.FindByEmail(ctx, email); err == nil {
		a.log.Info("super-admin already exists", "email", email)
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("seed: find admin: %w", err)
	}

	hash, err := security.NewBcryptPasswordHasher(bcryptCost).Hash(a.cfg.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &model.User{
		Name:         "Super Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, u); err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}
	a.log.Info("super-admin created", "email", email, "user_id", u.ID)
	return nil
}

func seedCategories(ctx context.Context, a *app) error {
	categories := infraRepo.NewCategoryGormRepository(a.db)
	for _, name := range defaultCategories {
		s := slug.Make(name)
		_, err := categories.FindBySlug(ctx, s)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("seed: find category %s: %w", s, err)
		}
		if err := categories.Create(ctx, &model.Category{Name: name, Slug: s, IsActive: true}); err != nil {
			return fmt.Errorf("seed: create category %s: %w", s, err)
		}
		a.log.Info("category created", "slug", s)
	}
	return nil
}
