package domain

import "errors"

var (
	ErrInvalidOrderStatus   = errors.New("invalid_order_status")
	ErrPaymentMissing       = errors.New("order_payment_missing")
	ErrInvalidInvoice       = errors.New("invalid_invoice")
	ErrInvoiceNotRefundable = errors.New("invoice_not_refundable")
	ErrInvalidCreditMemo    = errors.New("invalid_credit_memo")
	ErrMissingTransaction   = errors.New("missing_gateway_transaction")
	ErrUnsupportedEntity    = errors.New("unsupported_entity")
	ErrOrderExists          = errors.New("order_exists")
	ErrCreditMemoExists     = errors.New("credit_memo_exists")
)
