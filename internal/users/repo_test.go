//go:build integration_test || all_tests

package users

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/2beens/serjblog/pkg/testing"
)

func TestRepo_Add_Get(t *testing.T) {
	ctx, dbPool := testingpkg.GetDBPool(t)
	repo := NewRepo(dbPool)

	admin := &User{Email: gofakeit.Email(), Name: gofakeit.Name(), Password: "pbkdf2:sha256:1$salt$00"}
	require.NoError(t, repo.Add(ctx, admin))
	assert.True(t, admin.ID > 0)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.False(t, admin.CreatedAt.IsZero())

	reader := &User{Email: gofakeit.Email(), Name: gofakeit.Name(), Password: "pbkdf2:sha256:1$salt$00"}
	require.NoError(t, repo.Add(ctx, reader))
	assert.Equal(t, RoleReader, reader.Role)

	found, err := repo.Get(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.Email, found.Email)
	assert.Equal(t, admin.Password, found.Password)

	found, err = repo.GetByEmail(ctx, reader.Email)
	require.NoError(t, err)
	assert.Equal(t, reader.ID, found.ID)

	_, err = repo.Get(ctx, 987654)
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = repo.Add(ctx, &User{Email: reader.Email, Name: "dup", Password: "p"})
	assert.ErrorIs(t, err, ErrUserExists)
}
