package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
)

// LoginRequest captures the operator credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AdminDTO is the public view of a back-office operator.
type AdminDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// LoginResponse carries the access token issued after a successful login.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Admin       AdminDTO  `json:"admin"`
}

func adminFromModel(m *models.AdminUser) AdminDTO {
	return AdminDTO{
		ID:          m.ID,
		Email:       m.Email,
		Name:        m.Name,
		LastLoginAt: m.LastLoginAt,
	}
}
