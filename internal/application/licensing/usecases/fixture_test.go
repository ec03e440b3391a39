package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensing/internal/domain/account"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/shared/authorization"
)

const (
	testAllocationID = uint(1)
	testProductSetID = uint(1)
	testTargetSetID  = uint(1)
	testProductID    = uint(10)
	testCourseItemID = uint(500)
	testOrgItemID    = uint(7)
	testDistributor  = uint(42)
)

// ledgerFixture wires in-memory repositories around one active allocation
// whose product set holds a single course and whose target set holds a
// single organisation containing testDistributor.
type ledgerFixture struct {
	tx            *mockTxManager
	allocation    *licensing.Allocation
	allocations   *mockAllocationRepository
	distributions *mockDistributionRepository
	licences      *mockLicenceRepository
	productSets   *mockProductSetRepository
	targetSets    *mockTargetSetRepository
	artifacts     *mockArtifactStore
	users         *mockUserRepository
	settings      *mockSettingRepository
	publisher     *mockPublisher
	course        *mockProductHandler
	orgs          *mockTargetHandler
	registry      *licensing.Registry
	log           *nopLogger
}

func newLedgerFixture(t *testing.T, count int) *ledgerFixture {
	t.Helper()
	now := time.Now().UTC()

	f := &ledgerFixture{
		tx:            &mockTxManager{},
		allocation:    licensing.ReconstructAllocation(testAllocationID, testProductSetID, testTargetSetID, count, now.Add(-24*time.Hour), now.Add(24*time.Hour), now, 1),
		distributions: &mockDistributionRepository{},
		artifacts:     newMockArtifactStore(),
		users:         &mockUserRepository{},
		settings:      newMockSettingRepository(),
		publisher:     &mockPublisher{},
		course:        &mockProductHandler{kind: licensing.ProductTypeCourse},
		orgs: &mockTargetHandler{
			kind:    licensing.TargetTypeOrganisation,
			members: map[uint][]uint{testOrgItemID: {testDistributor}},
		},
		log: &nopLogger{},
	}

	f.allocations = &mockAllocationRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*licensing.Allocation, error) {
			if id != f.allocation.ID() {
				return nil, licensing.ErrAllocationNotFound
			}
			return f.allocation, nil
		},
	}
	f.licences = &mockLicenceRepository{
		allocationOf: func(distributionID uint) uint {
			d, err := f.distributions.GetByID(context.Background(), distributionID)
			if err != nil {
				return 0
			}
			return d.AllocationID()
		},
	}

	product := licensing.ReconstructProduct(testProductID, testProductSetID, licensing.ProductTypeCourse, testCourseItemID)
	productSet := licensing.ReconstructProductSet(testProductSetID, "Onboarding", now, 1, []*licensing.Product{product})
	f.productSets = &mockProductSetRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*licensing.ProductSet, error) {
			if id != testProductSetID {
				return nil, licensing.ErrProductSetNotFound
			}
			return productSet, nil
		},
		GetProductFunc: func(ctx context.Context, id uint) (*licensing.Product, error) {
			if id != testProductID {
				return nil, licensing.ErrProductNotFound
			}
			return product, nil
		},
	}

	target := licensing.ReconstructTarget(1, testTargetSetID, licensing.TargetTypeOrganisation, testOrgItemID)
	targetSet := licensing.ReconstructTargetSet(testTargetSetID, "Acme", "EMP-%s", now, 1, []*licensing.Target{target})
	f.targetSets = &mockTargetSetRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*licensing.TargetSet, error) {
			if id != testTargetSetID {
				return nil, licensing.ErrTargetSetNotFound
			}
			return targetSet, nil
		},
		ListFunc: func(ctx context.Context) ([]*licensing.TargetSet, error) {
			return []*licensing.TargetSet{targetSet}, nil
		},
	}

	registry, err := licensing.NewRegistry(
		[]licensing.ProductHandler{f.course},
		[]licensing.TargetHandler{f.orgs},
	)
	require.NoError(t, err)
	f.registry = registry

	return f
}

// addUser stores an existing account and returns it.
func (f *ledgerFixture) addUser(t *testing.T, username, idNumber string) *account.User {
	t.Helper()
	u, err := account.NewUser(account.NewUserParams{
		Fields:       account.RosterFields{Username: username, IDNumber: idNumber, FirstName: "Ada", LastName: "Lovelace", Email: username + "@example.com"},
		PasswordHash: "hash",
		Role:         authorization.RoleLearner,
	})
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *ledgerFixture) manualUseCase() *CreateManualDistributionUseCase {
	return NewCreateManualDistributionUseCase(f.tx, f.allocations, f.distributions, f.licences, f.productSets, f.users, f.log)
}

func (f *ledgerFixture) importUseCase() *ImportRosterUseCase {
	return NewImportRosterUseCase(f.tx, f.allocations, f.distributions, f.licences, f.targetSets, f.users,
		f.registry, mockPasswordHasher{}, f.publisher, AccountDefaults{Locale: "en", Host: "local"}, f.log)
}

func (f *ledgerFixture) stageUseCase(maxBytes int64) *StageBulkDistributionUseCase {
	return NewStageBulkDistributionUseCase(f.tx, f.allocations, f.distributions, f.productSets, f.artifacts, maxBytes, f.log)
}

func (f *ledgerFixture) reconcileUseCase(importer RosterImporter) *ReconciliationUseCase {
	return NewReconciliationUseCase(NewRunState(f.settings, f.log), importer, f.artifacts, f.allocations,
		f.distributions, f.licences, f.productSets, f.registry, f.publisher, f.log)
}

// stage records a distribution created by testDistributor with a staged roster.
func (f *ledgerFixture) stage(t *testing.T, roster string) *licensing.Distribution {
	t.Helper()
	d, err := f.stageUseCase(0).Execute(context.Background(), StageBulkDistributionCommand{
		AllocationID: testAllocationID,
		ProductID:    testProductID,
		Filename:     "roster.csv",
		Content:      []byte(roster),
		CreatedBy:    testDistributor,
	})
	require.NoError(t, err)
	return d
}
