package customers

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
)

// Contact is the customer data a webhook or checkout carries. Nil fields are
// left untouched on an existing row.
type Contact struct {
	Email string
	Name  *string
	Phone *string
	CPF   *string
}

// Repository persists customers keyed by email.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts the customer or overwrites the provided fields of the row
// with the same email, then returns the stored row.
func (r *Repository) Upsert(ctx context.Context, contact Contact) (*models.Customer, error) {
	email := NormalizeEmail(contact.Email)
	if email == "" {
		return nil, fmt.Errorf("customer email is required")
	}

	row := &models.Customer{
		Email: email,
		Name:  contact.Name,
		Phone: contact.Phone,
		CPF:   contact.CPF,
	}

	updates := []string{"updated_at"}
	if contact.Name != nil {
		updates = append(updates, "name")
	}
	if contact.Phone != nil {
		updates = append(updates, "phone")
	}
	if contact.CPF != nil {
		updates = append(updates, "cpf")
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}

	return r.FindByEmail(ctx, email)
}

// FindByEmail returns the customer with the given email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// NormalizeEmail lower-cases and trims an address so lookups match however the
// gateway or storefront spelled it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
