package licensing

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	"github.com/orris-inc/licensing/internal/shared/errors"
	"github.com/orris-inc/licensing/internal/shared/logger"
	"github.com/orris-inc/licensing/internal/shared/utils"
)

const rosterFormField = "file"

type DistributionHandler struct {
	manualUC       createManualDistributionUseCase
	bulkUC         stageBulkDistributionUseCase
	reuploadUC     reuploadDistributionUseCase
	listUC         listDistributionsUseCase
	maxUploadBytes int64
	logger         logger.Interface
}

func NewDistributionHandler(
	manualUC createManualDistributionUseCase,
	bulkUC stageBulkDistributionUseCase,
	reuploadUC reuploadDistributionUseCase,
	listUC listDistributionsUseCase,
	maxUploadBytes int64,
	logger logger.Interface,
) *DistributionHandler {
	return &DistributionHandler{
		manualUC:       manualUC,
		bulkUC:         bulkUC,
		reuploadUC:     reuploadUC,
		listUC:         listUC,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// CreateManual grants one licence to each selected user immediately.
func (h *DistributionHandler) CreateManual(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ManualDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for manual distribution", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	result, err := h.manualUC.Execute(c.Request.Context(), usecases.CreateManualDistributionCommand{
		AllocationID: req.AllocationID,
		ProductID:    req.ProductID,
		UserIDs:      req.UserIDs,
		CreatedBy:    userID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, &ManualDistributionResponse{
		Distribution: toDistributionDTO(result.Distribution, result.Licences, false),
		Licences:     result.Licences,
	}, "Licences distributed successfully")
}

// UploadRoster stages a roster for the next reconciliation run. No licence
// is granted and no capacity is checked until then.
func (h *DistributionHandler) UploadRoster(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var form BulkDistributionForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warnw("invalid form for roster upload", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	filename, content, err := h.readRoster(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	distribution, err := h.bulkUC.Execute(c.Request.Context(), usecases.StageBulkDistributionCommand{
		AllocationID: form.AllocationID,
		ProductID:    form.ProductID,
		Filename:     filename,
		Content:      content,
		CreatedBy:    userID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toDistributionDTO(distribution, -1, true), "Roster staged for the next reconciliation run")
}

// ReuploadRoster replaces the staged roster of a distribution that has not
// granted any licence yet.
func (h *DistributionHandler) ReuploadRoster(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	distributionID, err := utils.ParseIDParam(c, "id", "distribution")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	filename, content, err := h.readRoster(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.reuploadUC.Execute(c.Request.Context(), usecases.ReuploadDistributionCommand{
		DistributionID: distributionID,
		Filename:       filename,
		Content:        content,
		UploadedBy:     userID,
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Roster staged for the next reconciliation run", nil)
}

func (h *DistributionHandler) ListByAllocation(c *gin.Context) {
	allocationID, err := utils.ParseIDParam(c, "id", "allocation")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	views, err := h.listUC.Execute(c.Request.Context(), allocationID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toDistributionDTOs(views))
}

// readRoster reads the uploaded file, stopping one byte past the limit so the
// use case can reject oversized files.
func (h *DistributionHandler) readRoster(c *gin.Context) (string, []byte, error) {
	header, err := c.FormFile(rosterFormField)
	if err != nil {
		return "", nil, errors.NewValidationError("roster file is required", err.Error())
	}

	f, err := header.Open()
	if err != nil {
		h.logger.Errorw("failed to open uploaded roster", "filename", header.Filename, "error", err)
		return "", nil, errors.NewInternalError("failed to read uploaded file")
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxUploadBytes > 0 {
		r = io.LimitReader(f, h.maxUploadBytes+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		h.logger.Errorw("failed to read uploaded roster", "filename", header.Filename, "error", err)
		return "", nil, errors.NewInternalError("failed to read uploaded file")
	}
	return header.Filename, content, nil
}
