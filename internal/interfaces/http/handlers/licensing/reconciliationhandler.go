package licensing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	apperrors "github.com/orris-inc/licensing/internal/shared/errors"
	"github.com/orris-inc/licensing/internal/shared/logger"
	"github.com/orris-inc/licensing/internal/shared/utils"
)

type ReconciliationHandler struct {
	reconcileUC reconciliationUseCase
	state       runStateReader
	logger      logger.Interface
}

func NewReconciliationHandler(reconcileUC reconciliationUseCase, state runStateReader, logger logger.Interface) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconcileUC: reconcileUC,
		state:       state,
		logger:      logger,
	}
}

// Run executes one reconciliation pass synchronously.
func (h *ReconciliationHandler) Run(c *gin.Context) {
	userID, _ := currentUserID(c)
	h.logger.Infow("reconciliation requested over http", "user_id", userID)

	enrolled, err := h.reconcileUC.Execute(c.Request.Context())
	if err != nil {
		if errors.Is(err, licensing.ErrConcurrentRun) {
			utils.ErrorResponseWithError(c, apperrors.NewConflictError(err.Error()))
			return
		}
		h.logger.Errorw("reconciliation run failed", "user_id", userID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reconciliation completed", &ReconciliationRunDTO{Enrolled: enrolled})
}

func (h *ReconciliationHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	running, err := h.state.IsRunning(ctx)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	lastRun, err := h.state.LastRun(ctx)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	status := &ReconciliationStatusDTO{Running: running}
	if !lastRun.IsZero() {
		status.LastRun = &lastRun
	}
	utils.SuccessResponse(c, http.StatusOK, "", status)
}
