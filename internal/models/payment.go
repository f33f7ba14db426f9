package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// PaymentStatus represents the state of a monthly fee payment
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Lunas"
	PaymentStatusUnpaid  PaymentStatus = "Belum Lunas"
	PaymentStatusPending PaymentStatus = "Tertunda"
)

// MinimumFee is the smallest amount that can settle a monthly fee.
const MinimumFee int64 = 25000

// ProofPlaceholderURL is stored until a real proof of payment is uploaded
const ProofPlaceholderURL = "https://placehold.co/400x600?text=Bukti+Pembayaran"

// Valid reports whether s is one of the known payment statuses
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusUnpaid, PaymentStatusPending:
		return true
	}
	return false
}

// Payment records one monthly fee payment of a citizen
type Payment struct {
	ID          string        `json:"id,omitempty"`
	CitizenID   string        `json:"citizenId"`
	Period      string        `json:"period"` // e.g., "Juni 2024"
	Amount      int64         `json:"amount"`
	PaymentDate string        `json:"paymentDate"` // YYYY-MM-DD or empty
	ProofURL    *string       `json:"proofUrl"`
	Status      PaymentStatus `json:"status"`
	RecordedBy  string        `json:"recordedBy,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// PaymentKey returns the document id for the payment of a citizen in a period,
// e.g. "c3_2024-06". One payment per (citizen, period) is enforced by using it
// as the id. The key is safe to use unescaped in URL paths and document paths.
func PaymentKey(citizenID, period string) string {
	if year, month, err := ParsePeriod(period); err == nil {
		return fmt.Sprintf("%s_%04d-%02d", citizenID, year, int(month))
	}
	return citizenID + "_" + strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '-'
	}, period)
}

// LastWritten returns the most recent write time of the payment
func (p Payment) LastWritten() time.Time {
	if p.UpdatedAt.After(p.CreatedAt) {
		return p.UpdatedAt
	}
	return p.CreatedAt
}
