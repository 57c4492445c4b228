// Package domain describes Kount ENS review notifications and the ports the
// review processor drives.
package domain

import "strings"

type EventName string

// EventWorkflowStatusEdit is the only notification that can change an order.
const EventWorkflowStatusEdit EventName = "WORKFLOW_STATUS_EDIT"

// ReviewStatus is the Kount workflow status code.
type ReviewStatus string

const (
	ReviewStatusUnknown  ReviewStatus = ""
	ReviewStatusDecline  ReviewStatus = "D"
	ReviewStatusApprove  ReviewStatus = "A"
	ReviewStatusReview   ReviewStatus = "R"
	ReviewStatusEscalate ReviewStatus = "E"
)

// ParseReviewStatus matches the status code exactly; anything else is Unknown.
func ParseReviewStatus(raw string) ReviewStatus {
	status := ReviewStatus(raw)
	switch status {
	case ReviewStatusDecline, ReviewStatusApprove, ReviewStatusReview, ReviewStatusEscalate:
		return status
	default:
		return ReviewStatusUnknown
	}
}

// Pending reports whether the status means a decision was still outstanding.
func (s ReviewStatus) Pending() bool {
	switch s {
	case ReviewStatusReview, ReviewStatusEscalate:
		return true
	case ReviewStatusDecline, ReviewStatusApprove, ReviewStatusUnknown:
		return false
	default:
		return false
	}
}

// ReviewEvent is one notification from a Kount ENS batch.
type ReviewEvent struct {
	Name EventName
	// OrderIncrementID comes from the key's order_number attribute; empty when absent.
	OrderIncrementID string
	// ReviewTransactionID is the key text, the Kount transaction id.
	ReviewTransactionID string
	PreviousStatus      ReviewStatus
	NewStatus           ReviewStatus
	Agent               string
	OccurredAt          string
}

// NewReviewEvent trims identifiers and parses status codes from raw notification fields.
func NewReviewEvent(name, orderNumber, transactionID, oldValue, newValue string) ReviewEvent {
	return ReviewEvent{
		Name:                EventName(strings.TrimSpace(name)),
		OrderIncrementID:    strings.TrimSpace(orderNumber),
		ReviewTransactionID: strings.TrimSpace(transactionID),
		PreviousStatus:      ParseReviewStatus(strings.TrimSpace(oldValue)),
		NewStatus:           ParseReviewStatus(strings.TrimSpace(newValue)),
	}
}

// Action names the remediation the processor applied.
type Action string

const (
	ActionNone    Action = "none"
	ActionApprove Action = "approve"
	ActionVoid    Action = "void"
	ActionDeny    Action = "deny"
	ActionRefund  Action = "refund"
)
