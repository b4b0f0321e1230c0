package database

import (
	"context"
	"testing"

	"facility-ops-api-server/config"
	"facility-ops-api-server/internal/auth"
	"facility-ops-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	existing int64
	inserted []*models.User
}

func (f *fakeUsers) CountByEmail(ctx context.Context, email string) (int64, error) {
	return f.existing, nil
}

func (f *fakeUsers) Insert(ctx context.Context, u *models.User) error {
	f.inserted = append(f.inserted, u)
	return nil
}

func TestSeedSuperAdmin(t *testing.T) {
	auth.HashCost = bcrypt.MinCost
	cfg := config.SeedConfig{SuperAdminEmail: "root@example.com", SuperAdminPassword: "s3cret!"}

	t.Run("creates once", func(t *testing.T) {
		users := &fakeUsers{}
		require.NoError(t, SeedSuperAdmin(context.Background(), users, cfg, zap.NewNop()))
		require.Len(t, users.inserted, 1)

		admin := users.inserted[0]
		assert.Equal(t, models.RoleSuperAdmin, admin.Role)
		assert.True(t, auth.CheckPasswordHash("s3cret!", admin.Password))
	})

	t.Run("skips existing", func(t *testing.T) {
		users := &fakeUsers{existing: 1}
		require.NoError(t, SeedSuperAdmin(context.Background(), users, cfg, zap.NewNop()))
		assert.Empty(t, users.inserted)
	})

	t.Run("needs a password", func(t *testing.T) {
		users := &fakeUsers{}
		err := SeedSuperAdmin(context.Background(), users, config.SeedConfig{SuperAdminEmail: "root@example.com"}, zap.NewNop())
		assert.Error(t, err)
	})
}
