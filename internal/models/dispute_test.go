package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisputeStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to DisputeStatus
		want     bool
	}{
		{DisputeStatusNew, DisputeStatusInProgress, true},
		{DisputeStatusNew, DisputeStatusRejected, true},
		{DisputeStatusNew, DisputeStatusDone, false},
		{DisputeStatusInProgress, DisputeStatusDone, true},
		{DisputeStatusInProgress, DisputeStatusRejected, true},
		{DisputeStatusInProgress, DisputeStatusNew, false},
		{DisputeStatusDone, DisputeStatusDone, true},
		{DisputeStatusDone, DisputeStatusInProgress, false},
		{DisputeStatusRejected, DisputeStatusNew, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestDisputeStatus(t *testing.T) {
	assert.True(t, DisputeStatusDone.Terminal())
	assert.True(t, DisputeStatusRejected.Terminal())
	assert.False(t, DisputeStatusInProgress.Terminal())
	assert.False(t, DisputeStatus("Dibatalkan").Valid())
	assert.True(t, Dispute{PaymentID: GeneralDisputePaymentID}.IsGeneral())
	assert.True(t, Dispute{}.IsGeneral())
	assert.False(t, Dispute{PaymentID: "c1_2024-06"}.IsGeneral())
}
