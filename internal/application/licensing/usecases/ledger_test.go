package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	apperrors "github.com/orris-inc/licensing/internal/shared/errors"
)

func TestGetAllocation_ReportsNegativeAvailability(t *testing.T) {
	f := newLedgerFixture(t, 2)
	f.licences.CountByAllocationFunc = func(ctx context.Context, allocationID uint) (int, error) { return 3, nil }

	view, err := NewGetAllocationUseCase(f.allocations, f.licences, f.log).Execute(context.Background(), testAllocationID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Consumed)
	assert.Equal(t, -1, view.Available)
	assert.Equal(t, 0, view.DisplayAvailable)
	assert.True(t, view.Active)

	_, err = NewGetAllocationUseCase(f.allocations, f.licences, f.log).Execute(context.Background(), 99)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestListAllocations_ActiveOnly(t *testing.T) {
	f := newLedgerFixture(t, 2)
	var gotActive, gotAll bool
	f.allocations.ListActiveFunc = func(ctx context.Context, now time.Time, targetSetID *uint) ([]*licensing.AllocationUsage, error) {
		gotActive = true
		require.NotNil(t, targetSetID)
		assert.Equal(t, testTargetSetID, *targetSetID)
		return nil, nil
	}
	f.allocations.ListUsageFunc = func(ctx context.Context, targetSetID *uint) ([]*licensing.AllocationUsage, error) {
		gotAll = true
		return nil, nil
	}

	uc := NewListAllocationsUseCase(f.allocations, f.log)
	setID := testTargetSetID
	_, err := uc.Execute(context.Background(), ListAllocationsQuery{TargetSetID: &setID, ActiveOnly: true})
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), ListAllocationsQuery{})
	require.NoError(t, err)
	assert.True(t, gotActive)
	assert.True(t, gotAll)
}

func TestCreateAllocation(t *testing.T) {
	f := newLedgerFixture(t, 2)
	uc := NewCreateAllocationUseCase(f.allocations, f.productSets, f.targetSets, f.publisher, f.log)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a, err := uc.Execute(context.Background(), CreateAllocationCommand{
		ProductSetID: testProductSetID,
		TargetSetID:  testTargetSetID,
		Count:        10,
		StartDate:    start,
		EndDate:      start.AddDate(0, 6, 0),
		CreatedBy:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, a.Count())
	require.Len(t, f.publisher.ofType(licensing.EventTypeAllocationCreated), 1)

	tests := []struct {
		name  string
		cmd   CreateAllocationCommand
		check func(error) bool
	}{
		{"negative count", CreateAllocationCommand{ProductSetID: testProductSetID, TargetSetID: testTargetSetID, Count: -1, StartDate: start, EndDate: start}, apperrors.IsValidationError},
		{"end before start", CreateAllocationCommand{ProductSetID: testProductSetID, TargetSetID: testTargetSetID, Count: 1, StartDate: start, EndDate: start.AddDate(0, 0, -1)}, apperrors.IsValidationError},
		{"unknown product set", CreateAllocationCommand{ProductSetID: 9, TargetSetID: testTargetSetID, Count: 1, StartDate: start, EndDate: start}, apperrors.IsNotFoundError},
		{"unknown target set", CreateAllocationCommand{ProductSetID: testProductSetID, TargetSetID: 9, Count: 1, StartDate: start, EndDate: start}, apperrors.IsNotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.cmd)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestMyTarget(t *testing.T) {
	f := newLedgerFixture(t, 2)
	uc := NewMyTargetUseCase(f.targetSets, f.allocations, f.registry, f.log)

	mine, err := uc.InSet(context.Background(), testDistributor, testTargetSetID)
	require.NoError(t, err)
	assert.Equal(t, testOrgItemID, mine.Target.ItemID())
	require.NotNil(t, mine.Item)

	_, err = uc.InSet(context.Background(), 5, testTargetSetID)
	assert.True(t, apperrors.IsValidationError(err))

	all, err := uc.All(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCatalog(t *testing.T) {
	f := newLedgerFixture(t, 2)
	f.course.SearchFn = func(ctx context.Context, query string) ([]*licensing.CatalogItem, error) {
		return []*licensing.CatalogItem{{Type: licensing.ProductTypeCourse, ID: 1, Name: query}}, nil
	}
	uc := NewCatalogUseCase(f.registry, f.log)

	items, err := uc.Search(context.Background(), SearchCatalogQuery{Kind: CatalogKindProduct, Type: licensing.ProductTypeCourse, Query: " go "})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "go", items[0].Name)

	_, err = uc.Search(context.Background(), SearchCatalogQuery{Kind: CatalogKindProduct, Type: "webinar"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = uc.Search(context.Background(), SearchCatalogQuery{Kind: "badge"})
	assert.True(t, apperrors.IsValidationError(err))

	types, err := uc.Types(CatalogKindTarget)
	require.NoError(t, err)
	assert.Equal(t, []string{licensing.TargetTypeOrganisation}, types)
}
