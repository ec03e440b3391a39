package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensing/internal/domain/licensing"
)

func TestProductSetRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductSetRepository(db, newNopLogger())
	ctx := context.Background()

	set, err := licensing.NewProductSet("Onboarding", 1)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, set))
	require.NotZero(t, set.ID())

	products := []*licensing.Product{
		licensing.NewProduct(set.ID(), licensing.ItemRef{Type: licensing.ProductTypeCourse, ItemID: 10}),
		licensing.NewProduct(set.ID(), licensing.ItemRef{Type: licensing.ProductTypeProgram, ItemID: 20}),
	}
	require.NoError(t, repo.AddProducts(ctx, products))
	assert.NotZero(t, products[0].ID())

	loaded, err := repo.GetByID(ctx, set.ID())
	require.NoError(t, err)
	require.Len(t, loaded.Products(), 2)
	assert.True(t, loaded.Contains(products[1].ID()))

	p, err := repo.GetProduct(ctx, products[1].ID())
	require.NoError(t, err)
	assert.Equal(t, licensing.ProductTypeProgram, p.Type())

	require.NoError(t, loaded.Rename("Onboarding 2026"))
	require.NoError(t, repo.Update(ctx, loaded))
	require.NoError(t, repo.DeleteProducts(ctx, []uint{products[0].ID()}))

	loaded, err = repo.GetByID(ctx, set.ID())
	require.NoError(t, err)
	assert.Equal(t, "Onboarding 2026", loaded.Name())
	assert.Len(t, loaded.Products(), 1)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Products(), 1)

	require.NoError(t, repo.Delete(ctx, set.ID()))
	_, err = repo.GetByID(ctx, set.ID())
	assert.ErrorIs(t, err, licensing.ErrProductSetNotFound)
	_, err = repo.GetProduct(ctx, products[1].ID())
	assert.ErrorIs(t, err, licensing.ErrProductNotFound, "products are deleted with their set")

	assert.ErrorIs(t, repo.Delete(ctx, set.ID()), licensing.ErrProductSetNotFound)
}

func TestTargetSetRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTargetSetRepository(db, newNopLogger())
	ctx := context.Background()

	north, err := licensing.NewTargetSet("North", "N-%s", 1)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, north))
	south, err := licensing.NewTargetSet("South", "S-%s", 1)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, south))

	org := func(setID, item uint) *licensing.Target {
		return licensing.NewTarget(setID, licensing.ItemRef{Type: licensing.TargetTypeOrganisation, ItemID: item})
	}
	require.NoError(t, repo.AddTargets(ctx, []*licensing.Target{org(north.ID(), 1), org(north.ID(), 2), org(south.ID(), 3)}))

	containing, err := repo.ListContaining(ctx, []licensing.ItemRef{{Type: licensing.TargetTypeOrganisation, ItemID: 2}})
	require.NoError(t, err)
	require.Len(t, containing, 1)
	assert.Equal(t, north.ID(), containing[0].ID())
	assert.Len(t, containing[0].Targets(), 2, "all targets of the matching set are loaded")

	none, err := repo.ListContaining(ctx, []licensing.ItemRef{{Type: licensing.TargetTypeOrganisation, ItemID: 99}})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, north.Update("North region", "NR-%s"))
	require.NoError(t, repo.Update(ctx, north))
	loaded, err := repo.GetByID(ctx, north.ID())
	require.NoError(t, err)
	assert.Equal(t, "NR-%s", loaded.UserIDNumberFormat())
	assert.Equal(t, "NR-7", loaded.CanonicalIDNumber("7"))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "North region", all[0].Name())

	require.NoError(t, repo.DeleteTargets(ctx, []uint{loaded.Targets()[0].ID()}))
	loaded, err = repo.GetByID(ctx, north.ID())
	require.NoError(t, err)
	assert.Len(t, loaded.Targets(), 1)

	require.NoError(t, repo.Delete(ctx, south.ID()))
	_, err = repo.GetByID(ctx, south.ID())
	assert.ErrorIs(t, err, licensing.ErrTargetSetNotFound)
}
