package errs

import "errors"

// Domain-specific sentinel errors for the storefront usecase layers
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrDomainValidation = errors.New("domain validation error")
)
