package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills empty primary keys so inserts work on stores without
// gen_random_uuid() defaults (sqlite in tests).
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (w *WebhookLog) BeforeCreate(*gorm.DB) error {
	assignID(&w.ID)
	return nil
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

func (a *CheckoutAttempt) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

func (a *AbandonedCart) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

func (a *AdminUser) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
