package featureflag

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celulas/celulas-api/internal/pkg/database/dbtest"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepository(dbtest.Open(t)))
}

func TestIsDomainMutationEnabledFailOpen(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	assert.True(t, svc.IsDomainMutationEnabled(ctx), "absent key enables")

	for _, stored := range []string{"true", "TRUE", "False", "0", "", "no"} {
		require.NoError(t, svc.UpsertConfig(ctx, &ConfigEntry{
			Category: CategoryFeatureFlag,
			Key:      KeyDomainMutations,
			Value:    stored,
		}))
		assert.True(t, svc.IsDomainMutationEnabled(ctx), "stored %q", stored)
	}

	require.NoError(t, svc.SetFlag(ctx, KeyDomainMutations, false, nil, uuid.New()))
	assert.False(t, svc.IsDomainMutationEnabled(ctx))
}

func TestListFlagsExactTrue(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for key, value := range map[string]string{"A": "true", "B": "false", "C": "True", "D": "1"} {
		require.NoError(t, svc.UpsertConfig(ctx, &ConfigEntry{Category: CategoryFeatureFlag, Key: key, Value: value}))
	}
	require.NoError(t, svc.UpsertConfig(ctx, &ConfigEntry{Category: "ui", Key: "A", Value: "true"}))

	flags, err := svc.ListFlags(ctx, CategoryFeatureFlag)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"A": true, "B": false, "C": false, "D": false}, flags)
}

func TestSetFlagLastWriterWinsAndKeepsDescription(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	desc := "Locks writes during migrations"

	require.NoError(t, svc.SetFlag(ctx, "maintenance", true, &desc, uuid.New()))
	require.NoError(t, svc.SetFlag(ctx, "maintenance", false, nil, uuid.New()))

	entries, err := svc.ListConfigs(ctx, CategoryFeatureFlag)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "false", entries[0].Value)
	assert.Equal(t, ValueTypeBoolean, entries[0].ValueType)
	assert.Equal(t, desc, entries[0].Description.String)

	assert.ErrorIs(t, svc.SetFlag(ctx, " ", true, nil, uuid.Nil), ErrInvalidKey)
}

func TestDeleteConfig(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.UpsertConfig(ctx, &ConfigEntry{Category: "ui", Key: "theme", Value: "dark"}))
	require.NoError(t, svc.DeleteConfig(ctx, "ui", "theme"))
	assert.ErrorIs(t, svc.DeleteConfig(ctx, "ui", "theme"), ErrConfigNotFound)
}
