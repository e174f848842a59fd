package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadormedico/voicepen-backend/pkg/db/dbtest"
)

func strPtr(v string) *string { return &v }

func TestUpsertInsertsThenOverwritesProvidedFields(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	first, err := repo.Upsert(ctx, Contact{
		Email: " Maria@Example.com ",
		Name:  strPtr("Maria"),
		Phone: strPtr("11999990000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", first.Email)
	require.NotNil(t, first.Phone)

	second, err := repo.Upsert(ctx, Contact{
		Email: "maria@example.com",
		Name:  strPtr("Maria Souza"),
		CPF:   strPtr("12345678900"),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.Name)
	assert.Equal(t, "Maria Souza", *second.Name)
	require.NotNil(t, second.Phone, "phone was not provided and must be kept")
	assert.Equal(t, "11999990000", *second.Phone)
	require.NotNil(t, second.CPF)
	assert.Equal(t, "12345678900", *second.CPF)
}

func TestUpsertRequiresEmail(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	_, err := repo.Upsert(context.Background(), Contact{Email: "  "})
	require.Error(t, err)
}
