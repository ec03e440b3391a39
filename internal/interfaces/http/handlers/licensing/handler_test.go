package licensing

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/licensing/internal/shared/errors"
)

func TestMain(m *testing.M) {
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestAllocationHandler_Create(t *testing.T) {
	t.Run("success converts calendar dates", func(t *testing.T) {
		var got usecases.CreateAllocationCommand
		uc := &mockCreateAllocationUC{ExecuteFunc: func(ctx context.Context, cmd usecases.CreateAllocationCommand) (*licensing.Allocation, error) {
			got = cmd
			return licensing.ReconstructAllocation(9, cmd.ProductSetID, cmd.TargetSetID, cmd.Count, cmd.StartDate, cmd.EndDate, time.Now().UTC(), cmd.CreatedBy), nil
		}}
		h := NewAllocationHandler(uc, nil, nil, nil, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/allocations", CreateAllocationRequest{
			ProductSetID: 1, TargetSetID: 2, Count: 25, StartDate: "2026-01-01", EndDate: "2026-03-31",
		})
		testutil.SetAuthContext(c, 7)

		h.Create(c)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, uint(7), got.CreatedBy)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got.StartDate)
		assert.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, 999999999, time.UTC), got.EndDate)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		dto := decode[AllocationDTO](t, resp.Data)
		assert.Equal(t, "2026-03-31", dto.EndDate)
		assert.Equal(t, 25, dto.Available)
	})

	tests := []struct {
		name string
		body any
		auth bool
		err  error
		want int
	}{
		{name: "not authenticated", body: CreateAllocationRequest{ProductSetID: 1, TargetSetID: 2, StartDate: "2026-01-01", EndDate: "2026-01-02"}, want: http.StatusUnauthorized},
		{name: "bad date", body: map[string]any{"product_set_id": 1, "target_set_id": 2, "start_date": "01/01/2026", "end_date": "2026-01-02"}, auth: true, want: http.StatusBadRequest},
		{name: "negative count", body: map[string]any{"product_set_id": 1, "target_set_id": 2, "count": -1, "start_date": "2026-01-01", "end_date": "2026-01-02"}, auth: true, want: http.StatusBadRequest},
		{name: "unknown product set", body: CreateAllocationRequest{ProductSetID: 1, TargetSetID: 2, StartDate: "2026-01-01", EndDate: "2026-01-02"}, auth: true, err: errors.NewNotFoundError("product set not found"), want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockCreateAllocationUC{ExecuteFunc: func(ctx context.Context, cmd usecases.CreateAllocationCommand) (*licensing.Allocation, error) {
				return nil, tt.err
			}}
			h := NewAllocationHandler(uc, nil, nil, nil, testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodPost, "/allocations", tt.body)
			if tt.auth {
				testutil.SetAuthContext(c, 7)
			}

			h.Create(c)

			assert.Equal(t, tt.want, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			assert.False(t, resp.Success)
		})
	}
}

func TestAllocationHandler_GetAndList(t *testing.T) {
	now := time.Now().UTC()
	a := licensing.ReconstructAllocation(3, 1, 2, 5, now.Add(-time.Hour), now.Add(time.Hour), now, 1)

	t.Run("over-committed allocation", func(t *testing.T) {
		h := NewAllocationHandler(nil, &mockGetAllocationUC{view: &usecases.AllocationView{Allocation: a, Consumed: 7}}, nil, nil, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/allocations/3", nil)
		testutil.SetURLParam(c, "id", "3")

		h.Get(c)

		require.Equal(t, http.StatusOK, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		dto := decode[AllocationDTO](t, resp.Data)
		assert.Equal(t, -2, dto.Available)
		assert.Equal(t, 0, dto.DisplayAvailable)
		assert.True(t, dto.Active)
	})

	t.Run("invalid id", func(t *testing.T) {
		h := NewAllocationHandler(nil, &mockGetAllocationUC{}, nil, nil, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/allocations/abc", nil)
		testutil.SetURLParam(c, "id", "abc")

		h.Get(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list passes filters", func(t *testing.T) {
		list := &mockListAllocationsUC{result: []*licensing.AllocationUsage{{Allocation: a, Consumed: 1}}}
		h := NewAllocationHandler(nil, nil, list, nil, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/allocations", nil)
		testutil.SetQueryParams(c, map[string]string{"target_set_id": "2", "active": "true"})

		h.List(c)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, list.query.TargetSetID)
		assert.Equal(t, uint(2), *list.query.TargetSetID)
		assert.True(t, list.query.ActiveOnly)
	})
}

func TestDistributionHandler_CreateManual(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		uc := &mockManualUC{ExecuteFunc: func(ctx context.Context, cmd usecases.CreateManualDistributionCommand) (*usecases.CreateManualDistributionResult, error) {
			d := licensing.ReconstructDistribution(4, cmd.AllocationID, cmd.ProductID, time.Now().UTC(), cmd.CreatedBy)
			return &usecases.CreateManualDistributionResult{Distribution: d, Licences: len(cmd.UserIDs)}, nil
		}}
		h := NewDistributionHandler(uc, nil, nil, nil, 1024, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/distributions/manual", ManualDistributionRequest{AllocationID: 1, ProductID: 10, UserIDs: []uint{5, 6}})
		testutil.SetAuthContext(c, 42)

		h.CreateManual(c)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		out := decode[ManualDistributionResponse](t, resp.Data)
		assert.Equal(t, 2, out.Licences)
		assert.Equal(t, 2, out.Distribution.Count)
		assert.False(t, out.Distribution.Pending)
	})

	t.Run("insufficient capacity", func(t *testing.T) {
		uc := &mockManualUC{ExecuteFunc: func(ctx context.Context, cmd usecases.CreateManualDistributionCommand) (*usecases.CreateManualDistributionResult, error) {
			return nil, errors.NewConflictError("insufficient licences", "available=1 requested=2")
		}}
		h := NewDistributionHandler(uc, nil, nil, nil, 1024, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/distributions/manual", ManualDistributionRequest{AllocationID: 1, ProductID: 10, UserIDs: []uint{5, 6}})
		testutil.SetAuthContext(c, 42)

		h.CreateManual(c)

		require.Equal(t, http.StatusConflict, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "available=1 requested=2", resp.Error.Details)
	})

	t.Run("empty selection is rejected by binding", func(t *testing.T) {
		h := NewDistributionHandler(&mockManualUC{}, nil, nil, nil, 1024, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/distributions/manual", map[string]any{"allocation_id": 1, "product_id": 10, "user_ids": []uint{}})
		testutil.SetAuthContext(c, 42)

		h.CreateManual(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDistributionHandler_UploadRoster(t *testing.T) {
	roster := []byte("firstname,lastname,username,password,email,idnumber\nAda,Lovelace,ada,,ada@example.com,4521\n")

	t.Run("stages the roster", func(t *testing.T) {
		stage := &mockStageUC{}
		h := NewDistributionHandler(nil, stage, nil, nil, 1024, testutil.NewMockLogger())
		c, w := testutil.NewMultipartContext(http.MethodPost, "/distributions/bulk",
			map[string]string{"allocation_id": "1", "product_id": "10"}, rosterFormField, "roster.csv", roster)
		testutil.SetAuthContext(c, 42)

		h.UploadRoster(c)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, roster, stage.cmd.Content)
		assert.Equal(t, "roster.csv", stage.cmd.Filename)
		assert.Equal(t, uint(42), stage.cmd.CreatedBy)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		dto := decode[DistributionDTO](t, resp.Data)
		assert.Equal(t, licensing.CountPending, dto.Count)
		assert.True(t, dto.Pending)
	})

	t.Run("oversized file is cut one byte past the limit", func(t *testing.T) {
		stage := &mockStageUC{err: errors.NewValidationError(licensing.ErrArtifactTooLarge.Error())}
		h := NewDistributionHandler(nil, stage, nil, nil, 10, testutil.NewMockLogger())
		c, w := testutil.NewMultipartContext(http.MethodPost, "/distributions/bulk",
			map[string]string{"allocation_id": "1", "product_id": "10"}, rosterFormField, "roster.csv", roster)
		testutil.SetAuthContext(c, 42)

		h.UploadRoster(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Len(t, stage.cmd.Content, 11)
	})

	t.Run("missing file", func(t *testing.T) {
		h := NewDistributionHandler(nil, &mockStageUC{}, nil, nil, 1024, testutil.NewMockLogger())
		c, w := testutil.NewMultipartContext(http.MethodPost, "/distributions/bulk",
			map[string]string{"allocation_id": "1", "product_id": "10"}, "", "", nil)
		testutil.SetAuthContext(c, 42)

		h.UploadRoster(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reupload of a distribution with licences", func(t *testing.T) {
		reupload := &mockReuploadUC{err: errors.NewConflictError(licensing.ErrDistributionNotEmpty.Error())}
		h := NewDistributionHandler(nil, nil, reupload, nil, 1024, testutil.NewMockLogger())
		c, w := testutil.NewMultipartContext(http.MethodPut, "/distributions/4/roster", nil, rosterFormField, "fixed.csv", roster)
		testutil.SetURLParam(c, "id", "4")
		testutil.SetAuthContext(c, 42)

		h.ReuploadRoster(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, uint(4), reupload.cmd.DistributionID)
	})
}

func TestDistributionHandler_ListByAllocation(t *testing.T) {
	now := time.Now().UTC()
	list := &mockListDistributionsUC{result: []*usecases.DistributionView{
		{Distribution: licensing.ReconstructDistribution(1, 3, 10, now, 42), Count: 4},
		{Distribution: licensing.ReconstructDistribution(2, 3, 10, now, 42), Count: licensing.CountPending, Pending: true},
	}}
	h := NewDistributionHandler(nil, nil, nil, list, 1024, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/allocations/3/distributions", nil)
	testutil.SetURLParam(c, "id", "3")

	h.ListByAllocation(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	dtos := decode[[]DistributionDTO](t, resp.Data)
	require.Len(t, dtos, 2)
	assert.Equal(t, 4, dtos[0].Count)
	assert.Equal(t, -1, dtos[1].Count)
}

func TestSetHandler_TargetSets(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   int
	}{
		{name: "valid format", format: "EMP-%s", want: http.StatusCreated},
		{name: "missing placeholder", format: "EMP", want: http.StatusBadRequest},
		{name: "two placeholders", format: "%s-%s", want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			save := &mockSaveTargetSetUC{}
			h := NewSetHandler(nil, save, &mockSetsUC{}, testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodPost, "/target-sets", SaveTargetSetRequest{
				Name:               "Acme",
				UserIDNumberFormat: tt.format,
				Targets:            []ItemRefRequest{{Type: licensing.TargetTypeOrganisation, ItemID: 7}},
			})
			testutil.SetAuthContext(c, 1)

			h.CreateTargetSet(c)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusCreated {
				assert.Equal(t, []licensing.ItemRef{{Type: licensing.TargetTypeOrganisation, ItemID: 7}}, save.cmd.Targets)
			}
		})
	}

	t.Run("delete in use", func(t *testing.T) {
		sets := &mockSetsUC{deleteErr: errors.NewConflictError(licensing.ErrSetInUse.Error())}
		h := NewSetHandler(nil, nil, sets, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodDelete, "/target-sets/5", nil)
		testutil.SetURLParam(c, "id", "5")

		h.DeleteTargetSet(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, uint(5), sets.deleted)
	})
}

func TestCatalogHandler_Get(t *testing.T) {
	catalog := &mockCatalogUC{}
	h := NewCatalogHandler(catalog, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/catalog/product/course", nil)
	testutil.SetURLParam(c, "kind", "product")
	testutil.SetURLParam(c, "type", "course")
	testutil.SetQueryParams(c, map[string]string{"ids": "3, 4"})
	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uint{3, 4}, catalog.ids)

	c, w = testutil.NewTestContext(http.MethodGet, "/catalog/product/course", nil)
	testutil.SetQueryParams(c, map[string]string{"ids": "3,x"})
	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconciliationHandler(t *testing.T) {
	t.Run("concurrent run is a conflict", func(t *testing.T) {
		h := NewReconciliationHandler(&mockReconcileUC{err: licensing.ErrConcurrentRun}, &mockRunState{}, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/reconciliation/run", nil)
		testutil.SetAuthContext(c, 1)

		h.Run(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("run reports enrolled distributions", func(t *testing.T) {
		h := NewReconciliationHandler(&mockReconcileUC{enrolled: 3}, &mockRunState{}, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/reconciliation/run", nil)
		testutil.SetAuthContext(c, 1)

		h.Run(c)

		require.Equal(t, http.StatusOK, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		assert.Equal(t, 3, decode[ReconciliationRunDTO](t, resp.Data).Enrolled)
	})

	t.Run("status omits a run that never happened", func(t *testing.T) {
		h := NewReconciliationHandler(nil, &mockRunState{running: true}, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/reconciliation/status", nil)

		h.Status(c)

		require.Equal(t, http.StatusOK, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		status := decode[ReconciliationStatusDTO](t, resp.Data)
		assert.True(t, status.Running)
		assert.Nil(t, status.LastRun)
	})
}
