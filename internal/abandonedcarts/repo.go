package abandonedcarts

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/enums"
)

// Repository persists the abandoned cart funnel, one row per email.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Track records (or re-opens) an abandoned cart for the email.
func (r *Repository) Track(ctx context.Context, cart *models.AbandonedCart) error {
	if cart == nil || cart.CustomerEmail == "" {
		return fmt.Errorf("abandoned cart email is required")
	}
	cart.Status = enums.AbandonedCartStatusAbandoned
	cart.RecoveredAt = nil

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer_email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_name", "customer_phone", "cart_total", "status", "recovered_at", "updated_at",
			}),
		}).
		Create(cart).Error
}

// Reopen flips a recovered cart for the email back to abandoned after the
// payment that recovered it failed or was reversed.
func (r *Repository) Reopen(ctx context.Context, email string, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AbandonedCart{}).
		Where("customer_email = ? AND status = ?", email, enums.AbandonedCartStatusRecovered).
		Updates(map[string]any{
			"status":       enums.AbandonedCartStatusAbandoned,
			"recovered_at": nil,
			"updated_at":   now,
		})
	return result.RowsAffected, result.Error
}

// MarkRecovered closes the open cart for the email after a successful payment.
func (r *Repository) MarkRecovered(ctx context.Context, email string, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AbandonedCart{}).
		Where("customer_email = ? AND status = ?", email, enums.AbandonedCartStatusAbandoned).
		Updates(map[string]any{
			"status":       enums.AbandonedCartStatusRecovered,
			"recovered_at": now,
			"updated_at":   now,
		})
	return result.RowsAffected, result.Error
}

// FindByEmail returns the cart tracked for the email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.AbandonedCart, error) {
	var cart models.AbandonedCart
	if err := r.db.WithContext(ctx).Where("customer_email = ?", email).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}
