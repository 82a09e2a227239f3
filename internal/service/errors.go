package service

import "errors"

// 服务层业务错误
var (
	ErrInvalidSession        = errors.New("invalid session")
	ErrProductNotFound       = errors.New("product not found")
	ErrProductUnavailable    = errors.New("product unavailable")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrCartItemNotFound      = errors.New("cart item not found")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrInvalidPromoCode      = errors.New("invalid promo code")
	ErrInvalidTotal          = errors.New("order total must be positive")
	ErrOrderNotFound         = errors.New("order not found")
	ErrProofRequired         = errors.New("proof of capture required")
	ErrPaymentAmountMismatch = errors.New("captured amount does not match order total")
	ErrPaymentNotEnabled     = errors.New("payment channel not enabled")
	ErrMissingPaymentDraft   = errors.New("missing approved payment for session")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidInput          = errors.New("invalid input")
)
