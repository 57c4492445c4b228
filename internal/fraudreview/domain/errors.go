package domain

import "errors"

var (
	ErrForbiddenAddress      = errors.New("forbidden_address")
	ErrInvalidMerchant       = errors.New("invalid_merchant")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrOrderBusy             = errors.New("order_busy")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
)
