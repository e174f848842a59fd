package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is keyed by email; every webhook overwrites the contact fields.
type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:ux_customers_email" json:"email"`
	Name      *string   `gorm:"column:name" json:"name,omitempty"`
	Phone     *string   `gorm:"column:phone" json:"phone,omitempty"`
	CPF       *string   `gorm:"column:cpf" json:"cpf,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
