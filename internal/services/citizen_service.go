package services

import (
	"context"
	"crypto/subtle"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"sampahku/internal/models"
	"sampahku/internal/repository"
)

var sixteenDigits = regexp.MustCompile(`^[0-9]{16}$`)

// newValidator returns a validator with the "digits16" tag used for NIK and KK
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("digits16", func(fl validator.FieldLevel) bool {
		return sixteenDigits.MatchString(fl.Field().String())
	})
	return v
}

// CitizenInput is the citizen form as submitted
type CitizenInput struct {
	Name         string `json:"name" validate:"required"`
	NIK          string `json:"nik" validate:"required"`
	KK           string `json:"kk" validate:"required"`
	Address      string `json:"address" validate:"required"`
	CouponNumber string `json:"couponNumber" validate:"required"`
	RT           string `json:"rt"`
	RW           string `json:"rw"`
	Phone        string `json:"phone"`
}

func (in CitizenInput) trimmed() CitizenInput {
	return CitizenInput{
		Name:         strings.TrimSpace(in.Name),
		NIK:          strings.TrimSpace(in.NIK),
		KK:           strings.TrimSpace(in.KK),
		Address:      strings.TrimSpace(in.Address),
		CouponNumber: strings.TrimSpace(in.CouponNumber),
		RT:           strings.TrimSpace(in.RT),
		RW:           strings.TrimSpace(in.RW),
		Phone:        strings.TrimSpace(in.Phone),
	}
}

type CitizenService struct {
	Deps
	validate *validator.Validate
}

func NewCitizenService(d Deps) *CitizenService {
	return &CitizenService{Deps: d.withDefaults(), validate: newValidator()}
}

// ValidateCitizen checks a citizen form. existingNIK is the stored NIK when
// editing and empty when creating; uniqueness is only checked when the NIK
// is new or changed. Checks run in this order: completeness, NIK format,
// NIK uniqueness, KK format.
func (s *CitizenService) ValidateCitizen(ctx context.Context, input CitizenInput, existingNIK string) error {
	in := input.trimmed()

	if err := s.validate.Struct(in); err != nil {
		return invalid("", ErrRequiredFields, "Nama, alamat, NIK, KK, dan nomor kupon wajib diisi")
	}

	if err := s.validate.Var(in.NIK, "digits16"); err != nil {
		return invalid("nik", ErrInvalidNIK, "NIK harus terdiri dari 16 digit angka")
	}

	if existingNIK == "" || in.NIK != existingNIK {
		matches, err := s.Repos.Citizens.FindByNIK(ctx, in.NIK)
		if err != nil {
			return persistence("find citizen by NIK", err)
		}
		if len(matches) > 0 {
			return invalid("nik", ErrDuplicateNIK, "NIK sudah terdaftar pada warga lain")
		}
	}

	if err := s.validate.Var(in.KK, "digits16"); err != nil {
		return invalid("kk", ErrInvalidKK, "Nomor KK harus terdiri dari 16 digit angka")
	}
	return nil
}

// AddCitizen validates and stores a new citizen
func (s *CitizenService) AddCitizen(ctx context.Context, input CitizenInput) (*models.Citizen, error) {
	if err := s.ValidateCitizen(ctx, input, ""); err != nil {
		return nil, err
	}
	in := input.trimmed()
	if in.RT == "" || in.RW == "" {
		return nil, invalid("rt", ErrRequiredFields, "RT dan RW wajib diisi")
	}

	now := s.Now()
	citizen := &models.Citizen{
		Name:         in.Name,
		NIK:          in.NIK,
		KK:           in.KK,
		Address:      in.Address,
		RT:           in.RT,
		RW:           in.RW,
		CouponNumber: in.CouponNumber,
		Phone:        in.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repos.Citizens.Create(ctx, citizen); err != nil {
		return nil, persistence("create citizen", err)
	}
	s.Logger.Info("Citizen added", zap.String("citizen_id", citizen.ID), zap.String("rt", citizen.RT), zap.String("rw", citizen.RW))
	return citizen, nil
}

// UpdateCitizen validates and applies an edit. RT/RW stay unchanged when the input leaves them empty.
func (s *CitizenService) UpdateCitizen(ctx context.Context, id string, input CitizenInput) (*models.Citizen, error) {
	current, err := s.GetCitizen(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ValidateCitizen(ctx, input, current.NIK); err != nil {
		return nil, err
	}

	in := input.trimmed()
	updated := *current
	updated.Name = in.Name
	updated.NIK = in.NIK
	updated.KK = in.KK
	updated.Address = in.Address
	updated.CouponNumber = in.CouponNumber
	updated.Phone = in.Phone
	if in.RT != "" {
		updated.RT = in.RT
	}
	if in.RW != "" {
		updated.RW = in.RW
	}
	updated.UpdatedAt = s.Now()

	err = s.Repos.Citizens.Update(ctx, id, repository.Fields{
		"name":         updated.Name,
		"nik":          updated.NIK,
		"kk":           updated.KK,
		"address":      updated.Address,
		"couponNumber": updated.CouponNumber,
		"phone":        updated.Phone,
		"rt":           updated.RT,
		"rw":           updated.RW,
		"updatedAt":    updated.UpdatedAt,
	})
	if err != nil {
		return nil, persistence("update citizen", err)
	}
	return &updated, nil
}

func (s *CitizenService) GetCitizen(ctx context.Context, id string) (*models.Citizen, error) {
	c, err := s.Repos.Citizens.Get(ctx, id)
	if err != nil {
		return nil, persistence("get citizen", err)
	}
	if c == nil {
		return nil, ErrCitizenNotFound
	}
	return c, nil
}

// ListCitizens returns citizens of an area (all when area is zero), sorted by name
func (s *CitizenService) ListCitizens(ctx context.Context, area models.Area) ([]models.Citizen, error) {
	citizens, err := s.Repos.Citizens.List(ctx, area)
	if err != nil {
		return nil, persistence("list citizens", err)
	}
	sort.SliceStable(citizens, func(i, j int) bool {
		return strings.ToLower(citizens[i].Name) < strings.ToLower(citizens[j].Name)
	})
	return citizens, nil
}

// DeleteCitizen removes a citizen together with their payments and
// notifications. Children go first so a failure leaves the citizen in place
// and the delete can be retried. Disputes are kept; they carry the name.
func (s *CitizenService) DeleteCitizen(ctx context.Context, id string) error {
	citizen, err := s.GetCitizen(ctx, id)
	if err != nil {
		return err
	}

	payments, err := s.Repos.Payments.List(ctx, repository.PaymentFilter{CitizenID: id})
	if err != nil {
		return persistence("list citizen payments", err)
	}
	for _, p := range payments {
		if err := s.Repos.Payments.Delete(ctx, p.ID); err != nil {
			return persistence("delete citizen payment", err)
		}
		if s.Cache != nil {
			_ = s.Cache.Delete(ctx, recapCacheKey(p.Period))
		}
	}

	notifications, err := s.Repos.Notifications.ListByCitizen(ctx, id)
	if err != nil {
		return persistence("list citizen notifications", err)
	}
	for _, n := range notifications {
		if err := s.Repos.Notifications.Delete(ctx, n.ID); err != nil {
			return persistence("delete citizen notification", err)
		}
	}

	if err := s.Repos.Citizens.Delete(ctx, id); err != nil {
		return persistence("delete citizen", err)
	}
	s.Logger.Info("Citizen deleted",
		zap.String("citizen_id", id),
		zap.String("name", citizen.Name),
		zap.Int("payments_removed", len(payments)),
		zap.Int("notifications_removed", len(notifications)))
	return nil
}

// AuthenticateCitizen signs a citizen in with their NIK and KK
func (s *CitizenService) AuthenticateCitizen(ctx context.Context, nik, kk string) (*models.Citizen, error) {
	nik, kk = strings.TrimSpace(nik), strings.TrimSpace(kk)
	if !sixteenDigits.MatchString(nik) || !sixteenDigits.MatchString(kk) {
		return nil, ErrInvalidCredentials
	}
	matches, err := s.Repos.Citizens.FindByNIK(ctx, nik)
	if err != nil {
		return nil, persistence("find citizen by NIK", err)
	}
	for i := range matches {
		if subtle.ConstantTimeCompare([]byte(matches[i].KK), []byte(kk)) == 1 {
			return &matches[i], nil
		}
	}
	return nil, ErrInvalidCredentials
}
