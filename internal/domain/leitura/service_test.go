package leitura

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/database/dbtest"
)

func setup(t *testing.T) (*sqlx.DB, *Service, *user.User) {
	t.Helper()
	db := dbtest.Open(t)
	igreja := dbtest.SeedIgreja(t, db, "Comunidade da Graça")
	member := &user.User{ID: dbtest.SeedUser(t, db, igreja, "discipulo"), Role: user.RoleDiscipulo}
	return db, NewService(NewRepository(db)), member
}

func seedPlano(t *testing.T, db *sqlx.DB, capitulos int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	dbtest.Exec(t, db, `INSERT INTO planos_leitura (id, nome, descricao, total_capitulos, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, "Evangelhos "+id.String()[:4], "", capitulos, database.Now())
	return id
}

func countRegistros(t *testing.T, db *sqlx.DB, metaID uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, db.Rebind(`SELECT COUNT(*) FROM leitura_registros WHERE meta_id = ?`), metaID))
	return n
}

func TestIniciarMeta(t *testing.T) {
	db, svc, member := setup(t)
	ctx := context.Background()
	plano := seedPlano(t, db, 28)

	meta, err := svc.IniciarMeta(ctx, member, plano)
	require.NoError(t, err)
	assert.Equal(t, 0, meta.CapitulosLidos)
	assert.Equal(t, 28, meta.TotalCapitulos)

	_, err = svc.IniciarMeta(ctx, member, plano)
	assert.ErrorIs(t, err, ErrMetaExists)

	_, err = svc.IniciarMeta(ctx, member, uuid.New())
	assert.ErrorIs(t, err, ErrPlanoNotFound)

	metas, err := svc.ListMetas(ctx, member)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, meta.ID, metas[0].ID)
}

func TestRegistrarLeituraCompletesGoal(t *testing.T) {
	db, svc, member := setup(t)
	ctx := context.Background()
	meta, err := svc.IniciarMeta(ctx, member, seedPlano(t, db, 3))
	require.NoError(t, err)

	for capitulo := 1; capitulo <= 3; capitulo++ {
		meta, err = svc.RegistrarLeitura(ctx, member, meta.ID, RegistroInput{Livro: "Filipenses", Capitulo: capitulo})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, meta.CapitulosLidos)
	assert.True(t, meta.Concluida)
	assert.InDelta(t, 100.0, meta.Progresso(), 0.001)

	_, err = svc.RegistrarLeitura(ctx, member, meta.ID, RegistroInput{Livro: "Filipenses", Capitulo: 4})
	assert.ErrorIs(t, err, ErrMetaConcluida)
	assert.Equal(t, 3, countRegistros(t, db, meta.ID))

	stored, err := svc.repo.GetMeta(ctx, meta.ID)
	require.NoError(t, err)
	assert.True(t, stored.Concluida)
}

func TestRegistrarLeituraIsAtomic(t *testing.T) {
	db, svc, member := setup(t)
	ctx := context.Background()
	meta, err := svc.IniciarMeta(ctx, member, seedPlano(t, db, 10))
	require.NoError(t, err)

	dbtest.Exec(t, db, `CREATE TRIGGER block_meta_update BEFORE UPDATE ON metas_leitura
		BEGIN SELECT RAISE(ABORT, 'meta update blocked'); END`)

	_, err = svc.RegistrarLeitura(ctx, member, meta.ID, RegistroInput{Livro: "Salmos", Capitulo: 23})
	require.Error(t, err)
	assert.Equal(t, 0, countRegistros(t, db, meta.ID), "log row rolled back with the goal update")

	stored, err := svc.repo.GetMeta(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CapitulosLidos)
}

func TestRegistrarLeituraRules(t *testing.T) {
	db, svc, member := setup(t)
	ctx := context.Background()
	meta, err := svc.IniciarMeta(ctx, member, seedPlano(t, db, 5))
	require.NoError(t, err)

	other := &user.User{ID: dbtest.SeedUser(t, db, uuid.Nil, "discipulo"), Role: user.RoleDiscipulo}
	_, err = svc.RegistrarLeitura(ctx, other, meta.ID, RegistroInput{Livro: "Rute", Capitulo: 1})
	assert.ErrorIs(t, err, ErrMetaNotFound)

	_, err = svc.ListRegistros(ctx, other, meta.ID, 0)
	assert.ErrorIs(t, err, ErrMetaNotFound)

	tomorrow := time.Now().Add(24 * time.Hour)
	_, err = svc.RegistrarLeitura(ctx, member, meta.ID, RegistroInput{Livro: "Rute", Capitulo: 1, LidoEm: &tomorrow})
	assert.ErrorIs(t, err, ErrLidoNoFuturo)

	yesterday := time.Now().Add(-24 * time.Hour)
	_, err = svc.RegistrarLeitura(ctx, member, meta.ID, RegistroInput{Livro: "Rute", Capitulo: 1, LidoEm: &yesterday})
	require.NoError(t, err)
	_, err = svc.RegistrarLeitura(ctx, member, meta.ID, RegistroInput{Livro: "Rute", Capitulo: 2})
	require.NoError(t, err)

	regs, err := svc.ListRegistros(ctx, member, meta.ID, 0)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, 2, regs[0].Capitulo, "newest reading first")
}
