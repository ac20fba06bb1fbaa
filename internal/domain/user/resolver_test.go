package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celulas/celulas-api/internal/pkg/database/dbtest"
)

func TestResolverResolve(t *testing.T) {
	db := dbtest.Open(t)
	igrejaID := dbtest.SeedIgreja(t, db, "Igreja Central")
	userID := dbtest.SeedUser(t, db, igrejaID, string(RoleLiderCelula))

	resolver := NewResolver(NewRepository(db))
	ctx := context.Background()

	u, err := resolver.Resolve(ctx, "ext_"+userID.String())
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)
	assert.Equal(t, RoleLiderCelula, u.Role)
	church, ok := u.ChurchID()
	assert.True(t, ok)
	assert.Equal(t, igrejaID, church)

	// Each call reads through, so a promotion is visible immediately.
	dbtest.Exec(t, db, `UPDATE users SET role = ? WHERE id = ?`, string(RoleSupervisor), userID)
	u, err = resolver.Resolve(ctx, "ext_"+userID.String())
	require.NoError(t, err)
	assert.Equal(t, RoleSupervisor, u.Role)
}

func TestResolverUnknownSubject(t *testing.T) {
	db := dbtest.Open(t)
	resolver := NewResolver(NewRepository(db))

	_, err := resolver.Resolve(context.Background(), "ext_nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = resolver.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrExternalIDRequired)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM users`))
	assert.Zero(t, count)
}

func TestRepositoryCreate(t *testing.T) {
	db := dbtest.Open(t)
	igrejaID := dbtest.SeedIgreja(t, db, "Igreja Norte")
	repo := NewRepository(db)
	ctx := context.Background()

	u := &User{
		ExternalID: "user_abc",
		Email:      "bia@igreja.test",
		Name:       "Bia",
		Role:       RolePastor,
		IgrejaID:   uuid.NullUUID{UUID: igrejaID, Valid: true},
		IsAdmin:    true,
	}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.ID)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "user_abc", got.ExternalID)

	byExternal, err := repo.GetByExternalID(ctx, "user_abc")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byExternal.ID)
	assert.Equal(t, igrejaID, byExternal.IgrejaID.UUID)
}
