package fixtures_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedLeaveTypes(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	defer db.Close()
	repo := sqlite.NewLeaveTypeRepository(db)

	created, err := fixtures.SeedLeaveTypes(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, len(fixtures.GetDefaultLeaveTypes()), created)

	created, err = fixtures.SeedLeaveTypes(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, created)

	types, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, types, 3)
	for _, lt := range types {
		if lt.RequireAttachment {
			assert.True(t, lt.IsPaid, lt.Name)
		}
		if !lt.IsPaid {
			assert.True(t, lt.DefaultAllocation.IsZero(), lt.Name)
		}
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	defer db.Close()
	repo := sqlite.NewUserRepository(db)

	created, err := fixtures.EnsureAdmin(ctx, repo, "root@example.com", "hash")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = fixtures.EnsureAdmin(ctx, repo, "root@example.com", "other-hash")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := repo.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)
	assert.Equal(t, "hash", u.PasswordHash)
}
