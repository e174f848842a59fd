package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadormedico/voicepen-backend/internal/checkoutattempts"
	"github.com/gravadormedico/voicepen-backend/pkg/db/dbtest"
	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/enums"
	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
)

func strPtr(v string) *string { return &v }

func TestBeginCreatesPendingAttempt(t *testing.T) {
	conn := dbtest.Open(t)
	repo := checkoutattempts.NewRepository(conn)
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	resp, err := svc.Begin(context.Background(), BeginRequest{
		SessionID:     " sess-1 ",
		Email:         "Buyer@Example.com",
		Name:          strPtr(" Dra. Ana "),
		Phone:         strPtr(""),
		PaymentMethod: strPtr("pix"),
		Items: []CartItem{
			{SKU: "voicepen", Name: "VoicePen", Quantity: 1, UnitPrice: decimal.RequireFromString("197.00")},
			{SKU: "case", Name: "Estojo", Quantity: 2, UnitPrice: decimal.RequireFromString("19.95")},
		},
		UTM: map[string]string{"utm_source": "instagram"},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.AttemptStatusPending, resp.Status)
	assert.Equal(t, enums.RecoveryStatusPending, resp.RecoveryStatus)
	assert.True(t, resp.CartTotal.Equal(decimal.RequireFromString("236.90")), resp.CartTotal.String())

	stored, err := repo.FindByID(context.Background(), resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", stored.SessionID)
	assert.Equal(t, "buyer@example.com", stored.CustomerEmail)
	require.NotNil(t, stored.CustomerName)
	assert.Equal(t, "Dra. Ana", *stored.CustomerName)
	assert.Nil(t, stored.CustomerPhone)
	require.NotNil(t, stored.PaymentMethod)
	assert.Equal(t, "pix", *stored.PaymentMethod)

	var items []CartItem
	require.NoError(t, json.Unmarshal(stored.CartItems, &items))
	assert.Len(t, items, 2)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(stored.Metadata, &meta))
	assert.Equal(t, "checkout", meta["source"])
	assert.Equal(t, map[string]any{"utm_source": "instagram"}, meta["utm"])
}

func TestBeginRejectsNegativePrices(t *testing.T) {
	svc, err := NewService(&stubCreator{}, nil)
	require.NoError(t, err)

	_, err = svc.Begin(context.Background(), BeginRequest{
		SessionID: "sess",
		Email:     "buyer@example.com",
		Items:     []CartItem{{SKU: "x", Name: "X", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestBeginWrapsStoreFailure(t *testing.T) {
	svc, err := NewService(&stubCreator{err: errors.New("db down")}, nil)
	require.NoError(t, err)

	_, err = svc.Begin(context.Background(), BeginRequest{
		SessionID: "sess",
		Email:     "buyer@example.com",
		Items:     []CartItem{{SKU: "x", Name: "X", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
}

func TestCartTotalRoundsToCents(t *testing.T) {
	total, err := CartTotal([]CartItem{
		{SKU: "a", Quantity: 3, UnitPrice: decimal.RequireFromString("0.333")},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", total.String())
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil, nil)
	assert.Error(t, err)
}

type stubCreator struct {
	err error
}

func (s *stubCreator) Create(ctx context.Context, attempt *models.CheckoutAttempt) error {
	return s.err
}
