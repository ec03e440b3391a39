package licensing

import (
	"context"
	"time"

	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	"github.com/orris-inc/licensing/internal/domain/licensing"
)

type mockCreateAllocationUC struct {
	ExecuteFunc func(ctx context.Context, cmd usecases.CreateAllocationCommand) (*licensing.Allocation, error)
}

func (m *mockCreateAllocationUC) Execute(ctx context.Context, cmd usecases.CreateAllocationCommand) (*licensing.Allocation, error) {
	return m.ExecuteFunc(ctx, cmd)
}

type mockGetAllocationUC struct {
	view *usecases.AllocationView
	err  error
}

func (m *mockGetAllocationUC) Execute(ctx context.Context, allocationID uint) (*usecases.AllocationView, error) {
	return m.view, m.err
}

type mockListAllocationsUC struct {
	query  usecases.ListAllocationsQuery
	result []*licensing.AllocationUsage
	err    error
}

func (m *mockListAllocationsUC) Execute(ctx context.Context, query usecases.ListAllocationsQuery) ([]*licensing.AllocationUsage, error) {
	m.query = query
	return m.result, m.err
}

type mockManualUC struct {
	ExecuteFunc func(ctx context.Context, cmd usecases.CreateManualDistributionCommand) (*usecases.CreateManualDistributionResult, error)
}

func (m *mockManualUC) Execute(ctx context.Context, cmd usecases.CreateManualDistributionCommand) (*usecases.CreateManualDistributionResult, error) {
	return m.ExecuteFunc(ctx, cmd)
}

type mockStageUC struct {
	cmd usecases.StageBulkDistributionCommand
	err error
}

func (m *mockStageUC) Execute(ctx context.Context, cmd usecases.StageBulkDistributionCommand) (*licensing.Distribution, error) {
	m.cmd = cmd
	if m.err != nil {
		return nil, m.err
	}
	return licensing.ReconstructDistribution(31, cmd.AllocationID, cmd.ProductID, time.Now().UTC(), cmd.CreatedBy), nil
}

type mockReuploadUC struct {
	cmd usecases.ReuploadDistributionCommand
	err error
}

func (m *mockReuploadUC) Execute(ctx context.Context, cmd usecases.ReuploadDistributionCommand) error {
	m.cmd = cmd
	return m.err
}

type mockListDistributionsUC struct {
	result []*usecases.DistributionView
	err    error
}

func (m *mockListDistributionsUC) Execute(ctx context.Context, allocationID uint) ([]*usecases.DistributionView, error) {
	return m.result, m.err
}

type mockSaveTargetSetUC struct {
	cmd usecases.SaveTargetSetCommand
}

func (m *mockSaveTargetSetUC) Execute(ctx context.Context, cmd usecases.SaveTargetSetCommand) (*licensing.TargetSet, error) {
	m.cmd = cmd
	targets := make([]*licensing.Target, len(cmd.Targets))
	for i, ref := range cmd.Targets {
		targets[i] = licensing.ReconstructTarget(uint(i+1), 5, ref.Type, ref.ItemID)
	}
	id := cmd.ID
	if id == 0 {
		id = 5
	}
	return licensing.ReconstructTargetSet(id, cmd.Name, cmd.UserIDNumberFormat, time.Now().UTC(), cmd.SavedBy, targets), nil
}

type mockSetsUC struct {
	deleteErr error
	deleted   uint
}

func (m *mockSetsUC) GetProductSet(ctx context.Context, id uint) (*licensing.ProductSet, error) {
	return nil, licensing.ErrProductSetNotFound
}
func (m *mockSetsUC) ListProductSets(ctx context.Context) ([]*licensing.ProductSet, error) {
	return nil, nil
}
func (m *mockSetsUC) DeleteProductSet(ctx context.Context, id uint) error {
	m.deleted = id
	return m.deleteErr
}
func (m *mockSetsUC) GetTargetSet(ctx context.Context, id uint) (*licensing.TargetSet, error) {
	return nil, licensing.ErrTargetSetNotFound
}
func (m *mockSetsUC) ListTargetSets(ctx context.Context) ([]*licensing.TargetSet, error) {
	return nil, nil
}
func (m *mockSetsUC) DeleteTargetSet(ctx context.Context, id uint) error {
	m.deleted = id
	return m.deleteErr
}

type mockCatalogUC struct {
	ids []uint
}

func (m *mockCatalogUC) Types(kind string) ([]string, error) {
	return []string{licensing.ProductTypeCourse, licensing.ProductTypeProgram}, nil
}
func (m *mockCatalogUC) Search(ctx context.Context, q usecases.SearchCatalogQuery) ([]*licensing.CatalogItem, error) {
	return []*licensing.CatalogItem{{Type: q.Type, ID: 1, Name: q.Query}}, nil
}
func (m *mockCatalogUC) Get(ctx context.Context, kind, itemType string, itemIDs []uint) ([]*licensing.CatalogItem, error) {
	m.ids = itemIDs
	return nil, nil
}

type mockReconcileUC struct {
	enrolled int
	err      error
}

func (m *mockReconcileUC) Execute(ctx context.Context) (int, error) {
	return m.enrolled, m.err
}

type mockRunState struct {
	running bool
	lastRun time.Time
}

func (m *mockRunState) IsRunning(ctx context.Context) (bool, error)    { return m.running, nil }
func (m *mockRunState) LastRun(ctx context.Context) (time.Time, error) { return m.lastRun, nil }
