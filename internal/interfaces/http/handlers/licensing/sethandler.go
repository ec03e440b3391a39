package licensing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/shared/logger"
	"github.com/orris-inc/licensing/internal/shared/utils"
)

// SetHandler manages product sets and target sets.
type SetHandler struct {
	saveProductSetUC saveProductSetUseCase
	saveTargetSetUC  saveTargetSetUseCase
	setsUC           setsUseCase
	logger           logger.Interface
}

func NewSetHandler(
	saveProductSetUC saveProductSetUseCase,
	saveTargetSetUC saveTargetSetUseCase,
	setsUC setsUseCase,
	logger logger.Interface,
) *SetHandler {
	return &SetHandler{
		saveProductSetUC: saveProductSetUC,
		saveTargetSetUC:  saveTargetSetUC,
		setsUC:           setsUC,
		logger:           logger,
	}
}

func (h *SetHandler) CreateProductSet(c *gin.Context) {
	h.saveProductSet(c, 0)
}

func (h *SetHandler) UpdateProductSet(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "product set")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.saveProductSet(c, id)
}

func (h *SetHandler) saveProductSet(c *gin.Context, id uint) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SaveProductSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for save product set", "product_set_id", id, "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	set, err := h.saveProductSetUC.Execute(c.Request.Context(), usecases.SaveProductSetCommand{
		ID:       id,
		Name:     req.Name,
		Products: toItemRefs(req.Products),
		SavedBy:  userID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if id == 0 {
		utils.CreatedResponse(c, toProductSetDTO(set), "Product set created successfully")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Product set updated successfully", toProductSetDTO(set))
}

func (h *SetHandler) GetProductSet(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "product set")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	set, err := h.setsUC.GetProductSet(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toProductSetDTO(set))
}

func (h *SetHandler) ListProductSets(c *gin.Context) {
	sets, err := h.setsUC.ListProductSets(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	out := make([]*ProductSetDTO, len(sets))
	for i, s := range sets {
		out[i] = toProductSetDTO(s)
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

func (h *SetHandler) DeleteProductSet(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "product set")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.setsUC.DeleteProductSet(c.Request.Context(), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

func (h *SetHandler) CreateTargetSet(c *gin.Context) {
	h.saveTargetSet(c, 0)
}

func (h *SetHandler) UpdateTargetSet(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "target set")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.saveTargetSet(c, id)
}

func (h *SetHandler) saveTargetSet(c *gin.Context, id uint) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SaveTargetSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for save target set", "target_set_id", id, "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	set, err := h.saveTargetSetUC.Execute(c.Request.Context(), usecases.SaveTargetSetCommand{
		ID:                 id,
		Name:               req.Name,
		UserIDNumberFormat: req.UserIDNumberFormat,
		Targets:            toItemRefs(req.Targets),
		SavedBy:            userID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if id == 0 {
		utils.CreatedResponse(c, toTargetSetDTO(set), "Target set created successfully")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Target set updated successfully", toTargetSetDTO(set))
}

func (h *SetHandler) GetTargetSet(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "target set")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	set, err := h.setsUC.GetTargetSet(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toTargetSetDTO(set))
}

func (h *SetHandler) ListTargetSets(c *gin.Context) {
	sets, err := h.setsUC.ListTargetSets(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	out := make([]*TargetSetDTO, len(sets))
	for i, s := range sets {
		out[i] = toTargetSetDTO(s)
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

func (h *SetHandler) DeleteTargetSet(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "target set")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.setsUC.DeleteTargetSet(c.Request.Context(), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// RegisterValidators installs the idformat binding tag used by target set
// requests.
func RegisterValidators() error {
	return utils.RegisterBindingValidation("idformat", func(fl validator.FieldLevel) bool {
		return licensing.ValidateIDNumberFormat(fl.Field().String()) == nil
	})
}
