package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	shareddb "github.com/orris-inc/licensing/internal/shared/db"
)

var (
	windowStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)
	midWindow   = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
)

type ledgerFixture struct {
	db            *gorm.DB
	allocations   licensing.AllocationRepository
	distributions licensing.DistributionRepository
	licences      licensing.LicenceRepository
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	db := setupTestDB(t)
	return &ledgerFixture{
		db:            db,
		allocations:   NewAllocationRepository(db, newNopLogger()),
		distributions: NewDistributionRepository(db, newNopLogger()),
		licences:      NewLicenceRepository(db, newNopLogger()),
	}
}

func (f *ledgerFixture) allocation(t *testing.T, targetSetID uint, count int, start, end time.Time) *licensing.Allocation {
	t.Helper()
	a, err := licensing.NewAllocation(1, targetSetID, count, start, end, 1)
	require.NoError(t, err)
	require.NoError(t, f.allocations.Create(context.Background(), a))
	return a
}

func (f *ledgerFixture) distribute(t *testing.T, a *licensing.Allocation, createdAt time.Time, userIDs ...uint) *licensing.Distribution {
	t.Helper()
	d := licensing.ReconstructDistribution(0, a.ID(), 1, createdAt, 1)
	require.NoError(t, f.distributions.Create(context.Background(), d))

	licences := make([]*licensing.Licence, 0, len(userIDs))
	for _, uid := range userIDs {
		l, err := licensing.NewLicence(d.ID(), uid, 1)
		require.NoError(t, err)
		licences = append(licences, l)
	}
	require.NoError(t, f.licences.CreateBatch(context.Background(), licences))
	return d
}

func TestAllocationRepository_GetByID(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	a := f.allocation(t, 3, 5, windowStart, windowEnd)

	got, err := f.allocations.GetByID(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, 5, got.Count())
	assert.Equal(t, uint(3), got.TargetSetID())
	assert.True(t, got.EndDate().Equal(windowEnd))

	_, err = f.allocations.GetByID(ctx, 999)
	assert.ErrorIs(t, err, licensing.ErrAllocationNotFound)
}

func TestAllocationRepository_GetByIDForUpdate(t *testing.T) {
	f := newLedgerFixture(t)
	a := f.allocation(t, 3, 5, windowStart, windowEnd)
	tm := shareddb.NewTransactionManager(f.db)

	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		got, err := f.allocations.GetByIDForUpdate(ctx, a.ID())
		if err != nil {
			return err
		}
		assert.Equal(t, a.ID(), got.ID())
		return nil
	})
	require.NoError(t, err)
}

func TestAllocationRepository_ListActive(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	full := f.allocation(t, 1, 5, windowStart, windowEnd)
	f.distribute(t, full, midWindow, 1, 2, 3, 4, 5)

	later := f.allocation(t, 1, 5, windowStart, windowEnd)
	f.distribute(t, later, midWindow, 1, 2)

	sooner := f.allocation(t, 2, 1, windowStart, midWindow.Add(24*time.Hour))
	expired := f.allocation(t, 1, 5, windowStart, windowStart.Add(24*time.Hour))
	_ = expired

	usage, err := f.allocations.ListActive(ctx, midWindow, nil)
	require.NoError(t, err)
	require.Len(t, usage, 2, "exhausted and expired allocations are excluded")
	assert.Equal(t, sooner.ID(), usage[0].Allocation.ID(), "ordered by end date")
	assert.Equal(t, later.ID(), usage[1].Allocation.ID())
	assert.Equal(t, 2, usage[1].Consumed)
	assert.Equal(t, 3, usage[1].Available())

	targetSet := uint(2)
	usage, err = f.allocations.ListActive(ctx, midWindow, &targetSet)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, sooner.ID(), usage[0].Allocation.ID())

	usage, err = f.allocations.ListActive(ctx, windowEnd, nil)
	require.NoError(t, err)
	require.Len(t, usage, 1, "end bound is inclusive")
	assert.Equal(t, later.ID(), usage[0].Allocation.ID())
}

func TestAllocationRepository_ListUsage(t *testing.T) {
	f := newLedgerFixture(t)
	full := f.allocation(t, 1, 5, windowStart, windowEnd)
	f.distribute(t, full, midWindow, 1, 2, 3)
	f.distribute(t, full, midWindow, 4, 5)

	usage, err := f.allocations.ListUsage(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 5, usage[0].Consumed)
	assert.Equal(t, 0, usage[0].Available())
}

func TestAllocationRepository_CountBySet(t *testing.T) {
	f := newLedgerFixture(t)
	f.allocation(t, 7, 5, windowStart, windowEnd)
	f.allocation(t, 7, 1, windowStart, windowEnd)
	ctx := context.Background()

	n, err := f.allocations.CountByTargetSet(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = f.allocations.CountByTargetSet(ctx, 8)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.allocations.CountByProductSet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestLicenceRepository_Counts(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	a := f.allocation(t, 1, 10, windowStart, windowEnd)
	d1 := f.distribute(t, a, midWindow, 7, 3, 9)
	d2 := f.distribute(t, a, midWindow, 4)
	empty := f.distribute(t, a, midWindow)

	consumed, err := f.licences.CountByAllocation(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, 4, consumed)

	counts, err := f.licences.CountByDistributions(ctx, []uint{d1.ID(), d2.ID(), empty.ID()})
	require.NoError(t, err)
	assert.Equal(t, 3, counts[d1.ID()])
	assert.Equal(t, 1, counts[d2.ID()])
	assert.Equal(t, 0, counts[empty.ID()])

	users, err := f.licences.UserIDsByDistribution(ctx, d1.ID())
	require.NoError(t, err)
	assert.Equal(t, []uint{7, 3, 9}, users, "insertion order")

	deleted, err := f.licences.DeleteByDistribution(ctx, d1.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	consumed, err = f.licences.CountByAllocation(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, consumed)
}

func TestDistributionRepository_ListCreatedBetween(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	a := f.allocation(t, 1, 10, windowStart, windowEnd)

	lastRun := midWindow
	runStart := midWindow.Add(time.Hour)

	f.distribute(t, a, lastRun) // excluded: not after lastRun
	t2 := f.distribute(t, a, lastRun.Add(30*time.Minute))
	t1 := f.distribute(t, a, lastRun.Add(10*time.Minute))
	tie := f.distribute(t, a, lastRun.Add(30*time.Minute))
	edge := f.distribute(t, a, runStart)          // included: upper bound inclusive
	f.distribute(t, a, runStart.Add(time.Second)) // excluded: after run start

	got, err := f.distributions.ListCreatedBetween(ctx, lastRun, runStart)
	require.NoError(t, err)

	ids := make([]uint, 0, len(got))
	for _, d := range got {
		ids = append(ids, d.ID())
	}
	assert.Equal(t, []uint{t1.ID(), t2.ID(), tie.ID(), edge.ID()}, ids)

	none, err := f.distributions.ListCreatedBetween(ctx, runStart.Add(time.Second), runStart.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDistributionRepository_Lookups(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	a := f.allocation(t, 1, 10, windowStart, windowEnd)
	d1 := f.distribute(t, a, midWindow.Add(time.Minute))
	d2 := f.distribute(t, a, midWindow)

	got, err := f.distributions.GetByID(ctx, d1.ID())
	require.NoError(t, err)
	assert.Equal(t, a.ID(), got.AllocationID())

	_, err = f.distributions.GetByID(ctx, 999)
	assert.ErrorIs(t, err, licensing.ErrDistributionNotFound)

	list, err := f.distributions.ListByAllocation(ctx, a.ID())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, d2.ID(), list[0].ID())

	byIDs, err := f.distributions.ListByIDs(ctx, []uint{d1.ID(), d2.ID()})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, d2.ID(), byIDs[0].ID())
}
