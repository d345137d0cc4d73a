package request

type SingleProductRequest struct {
	ProductID string `json:"productId" binding:"required"`
}
