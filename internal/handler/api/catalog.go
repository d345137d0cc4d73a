package api

import (
	"errors"
	"net/http"

	reqdto "storefront-api/internal/handler/dto/request"
	resdto "storefront-api/internal/handler/dto/response"
	"storefront-api/internal/handler/httperr"
	"storefront-api/internal/infra"
	"storefront-api/internal/pkg/errs"
	"storefront-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	catalogQueries queries.CatalogQueries
}

func NewCatalogHandler(catalogQueries queries.CatalogQueries) *CatalogHandler {
	return &CatalogHandler{
		catalogQueries: catalogQueries,
	}
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	views, err := h.catalogQueries.ListProducts(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromProductViews(views))
}

func (h *CatalogHandler) GetSingleProduct(c *gin.Context) {
	var req reqdto.SingleProductRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	id, err := uuid.Parse(req.ProductID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid product ID format", nil)
		return
	}

	view, err := h.catalogQueries.GetProduct(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrProductNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Product not found", nil)
		default:
			respondStoreError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.SingleProductResponse{Success: true, Product: view})
}

func (h *CatalogHandler) ProductMeta(c *gin.Context) {
	meta, err := h.catalogQueries.ProductMeta(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCollectionMeta(*meta))
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	views, err := h.catalogQueries.ListCategories(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCategoryViews(views))
}

func (h *CatalogHandler) CategoryMeta(c *gin.Context) {
	meta, err := h.catalogQueries.CategoryMeta(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCollectionMeta(*meta))
}

func respondStoreError(c *gin.Context, err error) {
	switch {
	case infra.IsKind(err, infra.KindConnUnavailable):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Service temporarily unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
