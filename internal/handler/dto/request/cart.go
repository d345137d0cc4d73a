package request

import "strings"

type AddCartItemRequest struct {
	ItemID string `json:"itemId" binding:"required"`
	Size   string `json:"size" binding:"required"`
}

type UpdateCartItemRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Size     string `json:"size" binding:"required"`
	Quantity *int   `json:"quantity" binding:"required"`
}

func (r AddCartItemRequest) Normalized() (string, string) {
	return strings.TrimSpace(r.ItemID), strings.TrimSpace(r.Size)
}

func (r UpdateCartItemRequest) Normalized() (string, string) {
	return strings.TrimSpace(r.ItemID), strings.TrimSpace(r.Size)
}
