package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/gravadormedico/voicepen-backend/pkg/config"
	"github.com/gravadormedico/voicepen-backend/pkg/db"
	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/security"
)

type adminCreator interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, admin *models.AdminUser) error
}

// EnsureAdmin creates the configured bootstrap operator when it does not
// exist yet. Existing operators are left untouched. It reports whether a row
// was created.
func EnsureAdmin(ctx context.Context, repo adminCreator, adminCfg config.AdminConfig, pwCfg config.PasswordConfig) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(adminCfg.BootstrapEmail))
	if email == "" || adminCfg.BootstrapPassword == "" {
		return false, nil
	}

	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !db.IsNotFound(err) {
		return false, fmt.Errorf("lookup bootstrap admin: %w", err)
	}

	hash, err := security.HashPassword(adminCfg.BootstrapPassword, pwCfg)
	if err != nil {
		return false, fmt.Errorf("hash bootstrap password: %w", err)
	}

	name := strings.TrimSpace(adminCfg.BootstrapName)
	if name == "" {
		name = email
	}
	err = repo.Create(ctx, &models.AdminUser{Email: email, Name: name, PasswordHash: hash})
	if err != nil {
		// another instance won the race
		if db.IsUniqueViolation(err, "") {
			return false, nil
		}
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	return true, nil
}
