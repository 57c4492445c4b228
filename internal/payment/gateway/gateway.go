// Package gateway describes card transactions as the payment gateway reports them.
package gateway

import (
	"context"
	"errors"
	"time"
)

type TransactionStatus string

const (
	StatusAuthorizing            TransactionStatus = "authorizing"
	StatusAuthorized             TransactionStatus = "authorized"
	StatusAuthorizationExpired   TransactionStatus = "authorization_expired"
	StatusSubmittedForSettlement TransactionStatus = "submitted_for_settlement"
	StatusSettling               TransactionStatus = "settling"
	StatusSettlementPending      TransactionStatus = "settlement_pending"
	StatusSettled                TransactionStatus = "settled"
	StatusSettlementDeclined     TransactionStatus = "settlement_declined"
	StatusVoided                 TransactionStatus = "voided"
	StatusProcessorDeclined      TransactionStatus = "processor_declined"
	StatusGatewayRejected        TransactionStatus = "gateway_rejected"
	StatusFailed                 TransactionStatus = "failed"
	StatusUnrecognized           TransactionStatus = "unrecognized"
)

// ParseTransactionStatus maps a gateway status string; unknown values become StatusUnrecognized.
func ParseTransactionStatus(raw string) TransactionStatus {
	status := TransactionStatus(raw)
	switch status {
	case StatusAuthorizing, StatusAuthorized, StatusAuthorizationExpired,
		StatusSubmittedForSettlement, StatusSettling, StatusSettlementPending,
		StatusSettled, StatusSettlementDeclined, StatusVoided,
		StatusProcessorDeclined, StatusGatewayRejected, StatusFailed:
		return status
	default:
		return StatusUnrecognized
	}
}

type Transaction struct {
	ID                  string
	Type                string
	Status              TransactionStatus
	Amount              int64
	Currency            string
	RefundedTransaction string
	CreatedAt           time.Time
}

var (
	ErrInvalidTransactionID = errors.New("invalid_transaction_id")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrRefundRejected       = errors.New("refund_rejected")
	ErrNotConfigured        = errors.New("gateway_not_configured")
)

// Client is the subset of gateway operations fraud remediation relies on.
type Client interface {
	// FindTransaction returns nil when the gateway has no such transaction.
	FindTransaction(ctx context.Context, id string) (*Transaction, error)
	Refund(ctx context.Context, id string, amount int64) (*Transaction, error)
}
