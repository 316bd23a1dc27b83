package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	s, err := repo.Create(ctx, &UpsertRequest{
		Key:      "manicure_classic",
		Name:     "Классический маникюр",
		NameEN:   "Classic manicure",
		Category: "nails",
		Price:    450,
		Benefits: "Гигиена|Аккуратная форма|Стойкое покрытие",
	})
	require.NoError(t, err)
	assert.True(t, s.IsActive)
	assert.Equal(t, "USD", s.Currency, "default currency applied")
	assert.Len(t, s.BenefitList(), 3)

	_, err = repo.Create(ctx, &UpsertRequest{Key: "manicure_classic", Name: "dup"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestDeactivateKeepsRow(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	s, _ := repo.Create(ctx, &UpsertRequest{Key: "pedicure", Name: "Педикюр", Price: 550})
	require.NoError(t, repo.SetActive(ctx, s.ID, false))

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active, "deactivated entries leave the default listing")

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive, "row survives with is_active=false")
}

func TestUpsertValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	_, err := repo.Create(ctx, &UpsertRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = repo.Create(ctx, &UpsertRequest{Key: "k"})
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = repo.Create(ctx, &UpsertRequest{Key: "k", Name: "x", Price: -1})
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestListOrdersByCategoryThenName(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	_, _ = repo.Create(ctx, &UpsertRequest{Key: "b", Name: "Брови", Category: "brows"})
	_, _ = repo.Create(ctx, &UpsertRequest{Key: "m", Name: "Маникюр", Category: "nails"})
	_, _ = repo.Create(ctx, &UpsertRequest{Key: "g", Name: "Гель-лак", Category: "nails"})

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "brows", all[0].Category)
	assert.Equal(t, "Гель-лак", all[1].Name)
}
