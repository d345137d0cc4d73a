package api

import (
	"errors"
	"net/http"

	reqdto "storefront-api/internal/handler/dto/request"
	resdto "storefront-api/internal/handler/dto/response"
	"storefront-api/internal/handler/httperr"
	"storefront-api/internal/handler/middleware"
	"storefront-api/internal/pkg/errs"
	"storefront-api/internal/usecase/commands"
	"storefront-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	cartCommands commands.CartCommands
	cartQueries  queries.CartQueries
}

func NewCartHandler(cartCommands commands.CartCommands, cartQueries queries.CartQueries) *CartHandler {
	return &CartHandler{
		cartCommands: cartCommands,
		cartQueries:  cartQueries,
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	doc, err := h.cartQueries.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCartDocument(doc, ""))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req reqdto.AddCartItemRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	productID, variant := req.Normalized()
	doc, err := h.cartCommands.AddItem(c.Request.Context(), userID, productID, variant)
	if err != nil {
		respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCartDocument(doc, "Added To Cart"))
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req reqdto.UpdateCartItemRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	productID, variant := req.Normalized()
	doc, err := h.cartCommands.SetItemQuantity(c.Request.Context(), userID, productID, variant, *req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCartDocument(doc, "Cart Updated"))
}

// requireUserID aborts with 500 when the auth middleware did not leave a
// user ID on the context, which only happens on a wiring mistake.
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError,
			errs.New("user id missing from authenticated context"), "Internal server error", nil)
		return uuid.Nil, false
	}
	return userID, true
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cart request", nil)
	case errors.Is(err, errs.ErrInvalidQuantity):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Quantity must not be negative", nil)
	default:
		respondStoreError(c, err)
	}
}
