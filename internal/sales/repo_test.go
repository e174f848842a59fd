package sales

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadormedico/voicepen-backend/pkg/db/dbtest"
	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/enums"
	"github.com/gravadormedico/voicepen-backend/pkg/pagination"
)

func TestUpsertKeepsOneRowPerOrder(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	paidAt := time.Now().UTC()
	method := "pix"

	require.NoError(t, repo.Upsert(ctx, &models.Sale{
		AppmaxOrderID: "123",
		CustomerEmail: "a@b.com",
		TotalAmount:   decimal.NewFromInt(100),
		Status:        enums.SaleStatusApproved,
		PaymentMethod: &method,
		PaidAt:        &paidAt,
	}, true))

	refundedAt := paidAt.Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, &models.Sale{
		AppmaxOrderID: "123",
		CustomerEmail: "a@b.com",
		Status:        enums.SaleStatusRefunded,
		RefundedAt:    &refundedAt,
	}, false))

	sale, err := repo.FindByOrderID(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusRefunded, sale.Status)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(100)), "unknown amount must not clobber the stored one")
	require.NotNil(t, sale.PaidAt, "paid_at survives a later refund")
	require.NotNil(t, sale.RefundedAt)
	require.NotNil(t, sale.PaymentMethod)
	assert.Equal(t, "pix", *sale.PaymentMethod)

	var count int64
	require.NoError(t, dbtestCount(t, repo, &count))
	assert.EqualValues(t, 1, count)
}

func TestUpsertRejectsInvalidInput(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	require.Error(t, repo.Upsert(ctx, &models.Sale{CustomerEmail: "a@b.com", Status: enums.SaleStatusPaid}, false))
	require.Error(t, repo.Upsert(ctx, &models.Sale{AppmaxOrderID: "1", CustomerEmail: "a@b.com", Status: "completed"}, false))
}

func TestListAndTotals(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	for i, status := range []enums.SaleStatus{enums.SaleStatusPaid, enums.SaleStatusPaid, enums.SaleStatusRefused} {
		require.NoError(t, repo.Upsert(ctx, &models.Sale{
			AppmaxOrderID: string(rune('a' + i)),
			CustomerEmail: "c@d.com",
			TotalAmount:   decimal.NewFromInt(50),
			Status:        status,
		}, true))
	}

	page, err := repo.List(ctx, ListFilter{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.NotEmpty(t, page.NextCursor)

	rest, err := repo.List(ctx, ListFilter{}, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)

	refused := enums.SaleStatusRefused
	filtered, err := repo.List(ctx, ListFilter{Status: &refused}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, enums.SaleStatusRefused, filtered.Items[0].Status)

	totals, err := repo.TotalsSince(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, enums.SaleStatusPaid, totals[0].Status)
	assert.EqualValues(t, 2, totals[0].Count)
	assert.True(t, totals[0].Amount.Equal(decimal.NewFromInt(100)))
}

func dbtestCount(t *testing.T, repo *Repository, count *int64) error {
	t.Helper()
	return repo.db.Model(&models.Sale{}).Count(count).Error
}
