package service

import "errors"

var (
	ErrIllegalTransition  = errors.New("illegal transition of checkout state")
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrSubmissionInFlight = errors.New("a payment submission is already in progress")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
)
