package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"portal/internal/pkg/logger"
	"portal/internal/pkg/validator"
	"portal/internal/platform/auth"
	"portal/internal/platform/config"
	"portal/internal/platform/database"
	"portal/internal/platform/models"
	"portal/internal/platform/repositories"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	email := flag.String("email", "", "Account email (required)")
	password := flag.String("password", "", "Account password, at least 8 characters (required)")
	name := flag.String("name", "", "Display name")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging, "provision"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	profile, err := provisionSuperAdmin(context.Background(), db, *email, *password, *name)
	if err != nil {
		log.Fatal().Err(err).Msg("provisioning failed")
	}
	log.Info().Str("profile_id", profile.ID).Str("email", profile.Email).Msg("super admin ready")
}

// provisionSuperAdmin creates or updates an active super admin account. An
// existing identity gets the new password.
func provisionSuperAdmin(ctx context.Context, db *sql.DB, email, password, name string) (*models.Profile, error) {
	email = validator.NormalizeEmail(email)
	if err := validator.Email(email); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	identities := repositories.NewIdentityRepository(db)
	profiles := repositories.NewProfileRepository(db)

	identity, err := identities.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		tx, err := identities.BeginTx(ctx)
		if err != nil {
			return nil, err
		}
		identity = &models.Identity{Email: email, PasswordHash: hash}
		if err := identities.CreateTx(ctx, tx, identity); err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
	} else if err := identities.UpdatePassword(ctx, identity.ID, hash); err != nil {
		return nil, err
	}

	existing, err := profiles.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if name == "" && existing != nil {
		name = existing.FullName
	}

	profile := &models.Profile{
		ID:       identity.ID,
		Email:    email,
		FullName: name,
		Role:     models.RoleSuperAdmin,
		IsActive: true,
		Status:   models.StatusActive,
	}
	if existing != nil {
		profile.CreatedAt = existing.CreatedAt
	}
	if err := profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
