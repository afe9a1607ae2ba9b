package payment

import "errors"

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrAlreadySettled   = errors.New("payment already settled")
)
