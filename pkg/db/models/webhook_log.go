package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WebhookLog is the append-only record of every inbound gateway call.
type WebhookLog struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Endpoint         string         `gorm:"column:endpoint;not null" json:"endpoint"`
	Payload          datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	ResponseStatus   int            `gorm:"column:response_status;not null" json:"response_status"`
	ProcessingTimeMS int64          `gorm:"column:processing_time_ms;not null;default:0" json:"processing_time_ms"`
	Error            *string        `gorm:"column:error" json:"error,omitempty"`
	Success          bool           `gorm:"column:success;not null;default:false" json:"success"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (WebhookLog) TableName() string { return "webhooks_logs" }
