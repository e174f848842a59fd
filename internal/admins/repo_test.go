package admins

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadormedico/voicepen-backend/pkg/db"
	"github.com/gravadormedico/voicepen-backend/pkg/db/dbtest"
	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	admin := &models.AdminUser{Email: " Ops@Gravador.com ", Name: "Ops", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, admin))

	found, err := repo.FindByEmail(ctx, "OPS@gravador.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.ID)
	assert.Equal(t, "ops@gravador.com", found.Email)
	assert.Nil(t, found.LastLoginAt)

	dup := &models.AdminUser{Email: "ops@gravador.com", Name: "Other", PasswordHash: "hash"}
	err = repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "ux_admin_users_email"))
}

func TestRepositoryUpdates(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	admin := &models.AdminUser{Email: "ops@gravador.com", Name: "Ops", PasswordHash: "old"}
	require.NoError(t, repo.Create(ctx, admin))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, admin.ID, at))
	require.NoError(t, repo.UpdatePasswordHash(ctx, admin.ID, "new"))

	found, err := repo.FindByEmail(ctx, "ops@gravador.com")
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.True(t, found.LastLoginAt.Equal(at))
	assert.Equal(t, "new", found.PasswordHash)
}

func TestRepositoryFindMissing(t *testing.T) {
	conn := dbtest.Open(t)
	_, err := NewRepository(conn).FindByEmail(context.Background(), "nobody@x.com")
	assert.True(t, db.IsNotFound(err))
}
