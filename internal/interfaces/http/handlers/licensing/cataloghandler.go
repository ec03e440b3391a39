package licensing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	"github.com/orris-inc/licensing/internal/shared/logger"
	"github.com/orris-inc/licensing/internal/shared/utils"
)

// CatalogHandler backs the product and target choosers. The :kind path
// parameter is "product" or "target"; :type is a registered handler type.
type CatalogHandler struct {
	catalogUC catalogUseCase
	logger    logger.Interface
}

func NewCatalogHandler(catalogUC catalogUseCase, logger logger.Interface) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC, logger: logger}
}

func (h *CatalogHandler) Types(c *gin.Context) {
	types, err := h.catalogUC.Types(c.Param("kind"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", types)
}

// Search matches items by name. Query: q.
func (h *CatalogHandler) Search(c *gin.Context) {
	items, err := h.catalogUC.Search(c.Request.Context(), usecases.SearchCatalogQuery{
		Kind:  c.Param("kind"),
		Type:  c.Param("type"),
		Query: c.Query("q"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toCatalogItemDTOs(items))
}

// Get resolves item ids to display items. Query: ids=1,2,3.
func (h *CatalogHandler) Get(c *gin.Context) {
	ids, err := utils.ParseIDListQuery(c, "ids")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	items, err := h.catalogUC.Get(c.Request.Context(), c.Param("kind"), c.Param("type"), ids)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toCatalogItemDTOs(items))
}
