package services

import (
	"context"
	"sort"
	"time"

	"sampahku/internal/models"
	"sampahku/internal/repository"
)

const recapTTL = 5 * time.Minute

func recapCacheKey(period string) string {
	return "recap:" + period
}

// AreaRecap counts resolved statuses for one RT/RW
type AreaRecap struct {
	RT        string `json:"rt"`
	RW        string `json:"rw"`
	Citizens  int    `json:"citizens"`
	Paid      int    `json:"paid"`
	Unpaid    int    `json:"unpaid"`
	Pending   int    `json:"pending"`
	Collected int64  `json:"collected"`
}

// Recap summarizes a period across the kelurahan
type Recap struct {
	Period    string      `json:"period"`
	Areas     []AreaRecap `json:"areas"`
	Citizens  int         `json:"citizens"`
	Paid      int         `json:"paid"`
	Unpaid    int         `json:"unpaid"`
	Pending   int         `json:"pending"`
	Collected int64       `json:"collected"`
}

type RecapService struct {
	Deps
}

func NewRecapService(d Deps) *RecapService {
	return &RecapService{Deps: d.withDefaults()}
}

// Recap returns per-area counts for the period. Results are cached and
// invalidated by payment writes.
func (s *RecapService) Recap(ctx context.Context, period string) (*Recap, error) {
	label, err := models.NormalizePeriod(period)
	if err != nil {
		return nil, invalid("period", ErrInvalidPeriod, "Periode pembayaran tidak valid")
	}
	return GetOrSet(s.Cache, ctx, recapCacheKey(label), recapTTL, func() (*Recap, error) {
		return s.build(ctx, label)
	})
}

func (s *RecapService) build(ctx context.Context, period string) (*Recap, error) {
	citizens, err := s.Repos.Citizens.List(ctx, models.Area{})
	if err != nil {
		return nil, persistence("list citizens", err)
	}
	payments, err := s.Repos.Payments.List(ctx, repository.PaymentFilter{Period: period})
	if err != nil {
		return nil, persistence("list payments", err)
	}

	recap := &Recap{Period: period, Areas: []AreaRecap{}}
	byArea := map[models.Area]*AreaRecap{}
	for _, row := range StatusBoard(citizens, period, payments) {
		area := row.Citizen.Area()
		a, ok := byArea[area]
		if !ok {
			a = &AreaRecap{RT: area.RT, RW: area.RW}
			byArea[area] = a
		}
		a.Citizens++
		recap.Citizens++
		switch row.Status {
		case models.PaymentStatusPaid:
			a.Paid++
			recap.Paid++
			a.Collected += row.Payment.Amount
			recap.Collected += row.Payment.Amount
		case models.PaymentStatusPending:
			a.Pending++
			recap.Pending++
		default:
			a.Unpaid++
			recap.Unpaid++
		}
	}

	for _, a := range byArea {
		recap.Areas = append(recap.Areas, *a)
	}
	sort.Slice(recap.Areas, func(i, j int) bool {
		if recap.Areas[i].RW != recap.Areas[j].RW {
			return recap.Areas[i].RW < recap.Areas[j].RW
		}
		return recap.Areas[i].RT < recap.Areas[j].RT
	})
	return recap, nil
}
