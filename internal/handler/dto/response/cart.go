package response

import (
	"storefront-api/internal/domain/cart"
)

type CartResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	CartData cart.Document `json:"cartData"`
}

func FromCartDocument(doc cart.Document, message string) CartResponse {
	if doc == nil {
		doc = cart.New()
	}
	return CartResponse{Success: true, Message: message, CartData: doc}
}
