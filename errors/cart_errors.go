// errors/cart_errors.go
package errors

import "errors"

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrCartStorage = errors.New("cart storage failure")
)
