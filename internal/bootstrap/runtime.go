// Package bootstrap prepares the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"quartermaster/internal/auth"
	"quartermaster/internal/cache"
	"quartermaster/internal/config"
	"quartermaster/internal/database"
	"quartermaster/internal/models"
	"quartermaster/internal/repository"
	"quartermaster/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCatalog loads seed.DefaultCatalog into an empty catalog.
	SeedCatalog bool
}

// InitRuntime connects to DB and Redis, ensures the bootstrap admin and
// optionally seeds the default catalog.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	admin, err := EnsureBootstrapAdmin(context.Background(), cfg, repository.NewUserRepository(db))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	if opts.SeedCatalog {
		if err := seedEmptyCatalog(db, admin); err != nil {
			return nil, nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	return db, r, nil
}

// EnsureBootstrapAdmin creates the configured admin account, or promotes an
// existing account with that email. It does nothing when
// BOOTSTRAP_ADMIN_EMAIL is unset and returns the admin otherwise.
func EnsureBootstrapAdmin(ctx context.Context, cfg *config.Config, users repository.UserRepository) (*models.User, error) {
	if cfg == nil || users == nil {
		return nil, nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.BootstrapAdminEmail))
	if email == "" {
		return nil, nil
	}

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Role != models.RoleAdmin {
			existing.Role = models.RoleAdmin
			if err := users.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("promote %s: %w", email, err)
			}
			log.Printf("bootstrap admin: promoted existing account %s", email)
		}
		return existing, nil
	}

	if cfg.BootstrapAdminPassword == "" {
		return nil, fmt.Errorf("BOOTSTRAP_ADMIN_PASSWORD must be set when BOOTSTRAP_ADMIN_EMAIL is set")
	}
	hash, err := auth.HashPassword(cfg.BootstrapAdminPassword)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(cfg.BootstrapAdminName)
	if name == "" {
		name = "Administrator"
	}

	admin := &models.User{
		Email:    email,
		Password: hash,
		FullName: name,
		Role:     models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create %s: %w", email, err)
	}
	log.Printf("bootstrap admin: created %s (id=%d)", email, admin.ID)
	return admin, nil
}

func seedEmptyCatalog(db *gorm.DB, admin *models.User) error {
	var count int64
	if err := db.Model(&models.Resource{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	var createdBy uint
	if admin != nil {
		createdBy = admin.ID
	}
	created, err := seed.ApplyCatalog(db, &seed.DefaultCatalog, createdBy)
	if err != nil {
		return err
	}
	log.Printf("seeded %d catalog resources", created)
	return nil
}
