package webhooklogs

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/pagination"
)

const tableName = "webhooks_logs"

// optionalColumns are the columns a legacy table may lack. payload is the one
// column every deployment has always carried.
var optionalColumns = []string{"endpoint", "response_status", "processing_time_ms", "error", "success"}

// Capabilities describes the webhook log table found at startup.
type Capabilities struct {
	Full    bool
	Missing []string
}

// Repository persists webhook audit rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Detect inspects the table once so writes never have to guess at its shape.
func (r *Repository) Detect(ctx context.Context) Capabilities {
	migrator := r.db.WithContext(ctx).Migrator()
	var missing []string
	for _, col := range optionalColumns {
		if !migrator.HasColumn(tableName, col) {
			missing = append(missing, col)
		}
	}
	return Capabilities{Full: len(missing) == 0, Missing: missing}
}

// Insert writes a complete row.
func (r *Repository) Insert(ctx context.Context, row *models.WebhookLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// InsertPayloadOnly writes the reduced row legacy tables accept.
func (r *Repository) InsertPayloadOnly(ctx context.Context, payload datatypes.JSON) error {
	return r.db.WithContext(ctx).Table(tableName).Create(map[string]any{"payload": payload}).Error
}

// ListFilter narrows the admin browser.
type ListFilter struct {
	Success  *bool
	Endpoint string
}

// List returns rows newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.WebhookLog], error) {
	query := r.db.WithContext(ctx).Model(&models.WebhookLog{})
	if filter.Success != nil {
		query = query.Where("success = ?", *filter.Success)
	}
	if endpoint := strings.TrimSpace(filter.Endpoint); endpoint != "" {
		query = query.Where("endpoint = ?", endpoint)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.WebhookLog]{}, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.WebhookLog
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.WebhookLog]{}, err
	}
	return pagination.Paginate(rows, params.Limit, func(l models.WebhookLog) pagination.Cursor {
		return pagination.Cursor{CreatedAt: l.CreatedAt, ID: l.ID}
	}), nil
}

// DeleteOlderThan removes rows created before cutoff.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.WebhookLog{})
	return result.RowsAffected, result.Error
}

// CountSince returns the number of deliveries at or after since, split by success.
func (r *Repository) CountSince(ctx context.Context, since time.Time) (ok int64, failed int64, err error) {
	type row struct {
		Success bool
		Count   int64
	}
	var rows []row
	err = r.db.WithContext(ctx).
		Model(&models.WebhookLog{}).
		Select("success, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("success").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	for _, rw := range rows {
		if rw.Success {
			ok = rw.Count
		} else {
			failed = rw.Count
		}
	}
	return ok, failed, nil
}
