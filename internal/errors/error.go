// Package errors provides the sentinel errors shared by the storefront packages.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrInvalidCatalog = errors.New("invalid catalog")

var ErrEmptyCart = errors.New("cart is empty")

var ErrInvalidToken = errors.New("invalid token")

var ErrApplicationNotFound = errors.New("seller application not found")
var ErrTicketNotFound = errors.New("support ticket not found")
