package services

import (
	"fmt"

	"sampahku/internal/models"
)

// Resolution is the outcome of resolving a citizen's status for a period
type Resolution struct {
	Status  models.PaymentStatus `json:"status"`
	Payment *models.Payment      `json:"payment,omitempty"`
	// Duplicates counts extra payments matching the same citizen and period.
	// Non-zero means the store holds inconsistent data.
	Duplicates int `json:"duplicates,omitempty"`
}

// ResolveStatus finds the payment of citizenID for period in payments.
// No match means Belum Lunas. Period labels match case-sensitively.
// With several matches the most recently written one wins.
func ResolveStatus(citizenID, period string, payments []models.Payment) Resolution {
	var (
		chosen  *models.Payment
		matches int
	)
	for i := range payments {
		p := &payments[i]
		if p.CitizenID != citizenID || p.Period != period {
			continue
		}
		matches++
		if chosen == nil || newer(p, chosen) {
			chosen = p
		}
	}

	if chosen == nil {
		return Resolution{Status: models.PaymentStatusUnpaid}
	}
	found := *chosen
	return Resolution{Status: found.Status, Payment: &found, Duplicates: matches - 1}
}

func newer(a, b *models.Payment) bool {
	at, bt := a.LastWritten(), b.LastWritten()
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return a.ID > b.ID
}

// CitizenStatus is one row of a status board
type CitizenStatus struct {
	Citizen models.Citizen `json:"citizen"`
	Resolution
}

// StatusBoard resolves the status of every citizen for a period
func StatusBoard(citizens []models.Citizen, period string, payments []models.Payment) []CitizenStatus {
	byCitizen := make(map[string][]models.Payment, len(citizens))
	for _, p := range payments {
		if p.Period == period {
			byCitizen[p.CitizenID] = append(byCitizen[p.CitizenID], p)
		}
	}

	rows := make([]CitizenStatus, 0, len(citizens))
	for _, c := range citizens {
		rows = append(rows, CitizenStatus{
			Citizen:    c,
			Resolution: ResolveStatus(c.ID, period, byCitizen[c.ID]),
		})
	}
	return rows
}

// ApplyAmountRule enforces that Lunas implies amount >= MinimumFee.
// It returns the status to store and whether the request was overridden.
func ApplyAmountRule(amount int64, requested models.PaymentStatus) (models.PaymentStatus, bool) {
	if amount < models.MinimumFee && requested != models.PaymentStatusUnpaid {
		return models.PaymentStatusUnpaid, true
	}
	return requested, false
}

func downgradeNotice(amount int64, requested models.PaymentStatus) Notice {
	return Notice{
		Code: NoticeStatusDowngraded,
		Message: fmt.Sprintf("Jumlah Rp%d di bawah minimum Rp%d, status %q diubah menjadi %q",
			amount, models.MinimumFee, requested, models.PaymentStatusUnpaid),
	}
}
