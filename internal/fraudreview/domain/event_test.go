package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReviewStatusIsExact(t *testing.T) {
	assert.Equal(t, ReviewStatusDecline, ParseReviewStatus("D"))
	assert.Equal(t, ReviewStatusApprove, ParseReviewStatus("A"))
	assert.Equal(t, ReviewStatusReview, ParseReviewStatus("R"))
	assert.Equal(t, ReviewStatusEscalate, ParseReviewStatus("E"))
	assert.Equal(t, ReviewStatusUnknown, ParseReviewStatus("a"))
	assert.Equal(t, ReviewStatusUnknown, ParseReviewStatus("APPROVE"))
	assert.Equal(t, ReviewStatusUnknown, ParseReviewStatus(""))
}

func TestReviewStatusPending(t *testing.T) {
	assert.True(t, ReviewStatusReview.Pending())
	assert.True(t, ReviewStatusEscalate.Pending())
	assert.False(t, ReviewStatusApprove.Pending())
	assert.False(t, ReviewStatusDecline.Pending())
	assert.False(t, ReviewStatusUnknown.Pending())
}

func TestNewReviewEventTrimsFields(t *testing.T) {
	event := NewReviewEvent(" WORKFLOW_STATUS_EDIT ", " 100000123 ", " KTX1 ", " R", "A ")

	assert.Equal(t, EventWorkflowStatusEdit, event.Name)
	assert.Equal(t, "100000123", event.OrderIncrementID)
	assert.Equal(t, "KTX1", event.ReviewTransactionID)
	assert.Equal(t, ReviewStatusReview, event.PreviousStatus)
	assert.Equal(t, ReviewStatusApprove, event.NewStatus)
}
