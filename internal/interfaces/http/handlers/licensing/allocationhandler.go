// Package licensing provides HTTP handlers for licence allocation and distribution.
package licensing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	"github.com/orris-inc/licensing/internal/shared/biztime"
	"github.com/orris-inc/licensing/internal/shared/logger"
	"github.com/orris-inc/licensing/internal/shared/utils"
)

// AllocationHandler serves the licence ledger: allocations and their usage.
type AllocationHandler struct {
	createUC   createAllocationUseCase
	getUC      getAllocationUseCase
	listUC     listAllocationsUseCase
	myTargetUC myTargetUseCase
	logger     logger.Interface
}

func NewAllocationHandler(
	createUC createAllocationUseCase,
	getUC getAllocationUseCase,
	listUC listAllocationsUseCase,
	myTargetUC myTargetUseCase,
	logger logger.Interface,
) *AllocationHandler {
	return &AllocationHandler{
		createUC:   createUC,
		getUC:      getUC,
		listUC:     listUC,
		myTargetUC: myTargetUC,
		logger:     logger,
	}
}

// Create allocates a pool of licences for a product set to a target set.
// Dates are calendar days in the business timezone; the end date is inclusive.
func (h *AllocationHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create allocation", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	start, err := biztime.ParseDateInBizTimezone(req.StartDate)
	if err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}
	end, err := biztime.ParseDateInBizTimezone(req.EndDate)
	if err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	allocation, err := h.createUC.Execute(c.Request.Context(), usecases.CreateAllocationCommand{
		ProductSetID: req.ProductSetID,
		TargetSetID:  req.TargetSetID,
		Count:        req.Count,
		StartDate:    biztime.StartOfDayUTC(start),
		EndDate:      biztime.EndOfDayUTC(end),
		CreatedBy:    userID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toAllocationDTO(allocation, 0, biztime.NowUTC()), "Allocation created successfully")
}

func (h *AllocationHandler) Get(c *gin.Context) {
	allocationID, err := utils.ParseIDParam(c, "id", "allocation")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	view, err := h.getUC.Execute(c.Request.Context(), allocationID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toAllocationDTO(view.Allocation, view.Consumed, biztime.NowUTC()))
}

// List returns allocations with consumed and available counts.
// Query: target_set_id (optional), active=true for usable allocations only.
func (h *AllocationHandler) List(c *gin.Context) {
	targetSetID, err := utils.ParseOptionalIDQuery(c, "target_set_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	usage, err := h.listUC.Execute(c.Request.Context(), usecases.ListAllocationsQuery{
		TargetSetID: targetSetID,
		ActiveOnly:  c.Query("active") == "true",
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toAllocationDTOs(usage, biztime.NowUTC()))
}

// ListMine returns the active allocations of every target set the caller
// belongs to.
func (h *AllocationHandler) ListMine(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	usage, err := h.myTargetUC.ActiveAllocations(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toAllocationDTOs(usage, biztime.NowUTC()))
}

// MyTargets resolves the caller's target, either in one target set
// (?target_set_id=) or across all of them.
func (h *AllocationHandler) MyTargets(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	targetSetID, err := utils.ParseOptionalIDQuery(c, "target_set_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if targetSetID != nil {
		target, err := h.myTargetUC.InSet(c.Request.Context(), userID, *targetSetID)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "", toMyTargetDTO(target))
		return
	}

	targets, err := h.myTargetUC.All(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	out := make([]*MyTargetDTO, len(targets))
	for i, t := range targets {
		out[i] = toMyTargetDTO(t)
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}
