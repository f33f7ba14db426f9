package models

import "time"

// DisputeStatus is the lifecycle state of a dispute (sanggahan)
type DisputeStatus string

const (
	DisputeStatusNew        DisputeStatus = "Baru"
	DisputeStatusInProgress DisputeStatus = "Diproses"
	DisputeStatusDone       DisputeStatus = "Selesai"
	DisputeStatusRejected   DisputeStatus = "Ditolak"
)

// GeneralDisputePaymentID marks a dispute that is not tied to a payment
const GeneralDisputePaymentID = "UMUM"

// DisputeTransitions lists the transitions admins are expected to make.
// Moving to the same state is always accepted.
var DisputeTransitions = map[DisputeStatus][]DisputeStatus{
	DisputeStatusNew:        {DisputeStatusInProgress, DisputeStatusRejected},
	DisputeStatusInProgress: {DisputeStatusDone, DisputeStatusRejected},
	DisputeStatusDone:       {},
	DisputeStatusRejected:   {},
}

// Valid reports whether s is a known dispute state
func (s DisputeStatus) Valid() bool {
	_, ok := DisputeTransitions[s]
	return ok
}

// Terminal reports whether no further transition is expected from s
func (s DisputeStatus) Terminal() bool {
	return s == DisputeStatusDone || s == DisputeStatusRejected
}

// CanTransitionTo reports whether moving from s to next is in the transition table
func (s DisputeStatus) CanTransitionTo(next DisputeStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range DisputeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Dispute is an objection a citizen files against a payment record or in general
type Dispute struct {
	ID             string        `json:"id,omitempty"`
	PaymentID      string        `json:"paymentId"`
	CitizenID      string        `json:"citizenId,omitempty"`
	CitizenName    string        `json:"citizenName"`
	RT             string        `json:"rt"`
	RW             string        `json:"rw"`
	Reason         string        `json:"reason"`
	SubmittedDate  string        `json:"submittedDate"` // YYYY-MM-DD, set once at creation
	Status         DisputeStatus `json:"status"`
	ResolutionNote string        `json:"resolutionNote,omitempty"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// IsGeneral reports whether the dispute is not tied to a payment
func (d Dispute) IsGeneral() bool {
	return d.PaymentID == "" || d.PaymentID == GeneralDisputePaymentID
}
