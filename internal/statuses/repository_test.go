package statuses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	s, err := repo.Create(ctx, &CreateRequest{Key: " Returning ", Label: "Returning", Position: 10})
	require.NoError(t, err)
	assert.Equal(t, "returning", s.Key, "keys are normalized")
	assert.True(t, s.Custom)
	assert.Equal(t, "#6c757d", s.Color, "default color applied")

	_, err = repo.Create(ctx, &CreateRequest{Key: "returning", Label: "dup"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestCreateRejectsReservedKeys(t *testing.T) {
	_, err := NewInMemoryRepository().Create(context.Background(),
		&CreateRequest{Key: "vip", Label: "VIP clone"})
	assert.ErrorIs(t, err, ErrReservedKey)
}

func TestAllMergesBaseAndCustom(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	_, err := repo.Create(ctx, &CreateRequest{Key: "returning", Label: "Returning"})
	require.NoError(t, err)

	all, err := All(ctx, repo)
	require.NoError(t, err)
	assert.Len(t, all, len(Base)+1)
	assert.Equal(t, "new", all[0].Key)
	assert.Equal(t, "returning", all[len(all)-1].Key)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	s, _ := repo.Create(ctx, &CreateRequest{Key: "returning", Label: "Returning"})

	require.NoError(t, repo.Delete(ctx, s.ID))
	assert.ErrorIs(t, repo.Delete(ctx, s.ID), ErrStatusNotFound)
}
