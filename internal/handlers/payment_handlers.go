package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"sampahku/internal/models"
	"sampahku/internal/repository"
	"sampahku/internal/services"
)

const maxProofSize = 5 << 20

type PaymentHandler struct {
	payments *services.PaymentService
	citizens *services.CitizenService
}

func NewPaymentHandler(payments *services.PaymentService, citizens *services.CitizenService) *PaymentHandler {
	return &PaymentHandler{payments: payments, citizens: citizens}
}

// RecordPayment marks a citizen's fee as paid for a period
func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	var in services.RecordPaymentInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx := c.Request().Context()

	// RT heads record only for their own citizens; unknown ids fall through
	// to the service, which reports them without writing anything
	citizen, err := h.citizens.GetCitizen(ctx, strings.TrimSpace(in.CitizenID))
	switch {
	case err == nil:
		if err := ensureArea(c, citizen.Area()); err != nil {
			return err
		}
	case !errors.Is(err, services.ErrCitizenNotFound):
		return err
	}
	in.RecordedBy = principal(c).ID

	record, err := h.payments.RecordPayment(ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, record)
}

func (h *PaymentHandler) ListPayments(c echo.Context) error {
	f := repository.PaymentFilter{
		CitizenID: c.QueryParam("citizenId"),
		Period:    c.QueryParam("period"),
		Status:    models.PaymentStatus(c.QueryParam("status")),
	}
	ctx := c.Request().Context()

	p := principal(c)
	if p.Role == models.RoleRT && f.CitizenID == "" {
		// RT heads list through their status board instead
		return echo.NewHTTPError(http.StatusBadRequest, "Parameter citizenId wajib diisi")
	}
	if f.CitizenID != "" {
		citizen, err := h.citizens.GetCitizen(ctx, f.CitizenID)
		if err != nil {
			return err
		}
		if err := ensureArea(c, citizen.Area()); err != nil {
			return err
		}
	}

	payments, err := h.payments.ListPayments(ctx, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	payment, err := h.loadInScope(c, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) UpdatePayment(c echo.Context) error {
	payment, err := h.loadInScope(c, c.Param("id"))
	if err != nil {
		return err
	}
	var upd services.PaymentUpdate
	if err := bind(c, &upd); err != nil {
		return err
	}

	result, err := h.payments.UpdatePayment(c.Request().Context(), payment.ID, upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) DeletePayment(c echo.Context) error {
	payment, err := h.loadInScope(c, c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.payments.DeletePayment(c.Request().Context(), payment.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadProof attaches a proof-of-payment image to a payment
func (h *PaymentHandler) UploadProof(c echo.Context) error {
	payment, err := h.loadInScope(c, c.Param("id"))
	if err != nil {
		return err
	}

	file, err := c.FormFile("proof")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Berkas bukti pembayaran wajib diunggah")
	}
	if file.Size > maxProofSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Ukuran berkas maksimal 5 MB")
	}
	contentType := file.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		return echo.NewHTTPError(http.StatusBadRequest, "Bukti pembayaran harus berupa gambar atau PDF")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	updated, err := h.payments.AttachProof(c.Request().Context(), payment.ID, file.Filename, contentType, src, file.Size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// StatusBoard resolves every citizen of the caller's area for ?period=
func (h *PaymentHandler) StatusBoard(c echo.Context) error {
	rows, err := h.payments.StatusBoard(c.Request().Context(), scopedArea(c), periodParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

// CitizenStatus resolves one citizen for ?period=
func (h *PaymentHandler) CitizenStatus(c echo.Context) error {
	ctx := c.Request().Context()
	citizen, err := h.citizens.GetCitizen(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if err := ensureArea(c, citizen.Area()); err != nil {
		return err
	}
	res, err := h.payments.CitizenStatus(ctx, citizen.ID, periodParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, services.CitizenStatus{Citizen: *citizen, Resolution: res})
}

// MyPayments returns the signed-in citizen's payment history
func (h *PaymentHandler) MyPayments(c echo.Context) error {
	payments, err := h.payments.CitizenHistory(c.Request().Context(), principal(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

// MyStatus resolves the signed-in citizen's status for ?period=
func (h *PaymentHandler) MyStatus(c echo.Context) error {
	res, err := h.payments.CitizenStatus(c.Request().Context(), principal(c).ID, periodParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) loadInScope(c echo.Context, id string) (*models.Payment, error) {
	ctx := c.Request().Context()
	payment, err := h.payments.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if p := principal(c); p != nil && p.Role == models.RoleRT {
		citizen, err := h.citizens.GetCitizen(ctx, payment.CitizenID)
		if err != nil {
			return nil, err
		}
		if err := ensureArea(c, citizen.Area()); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

// periodParam reads ?period=, defaulting to the current month
func periodParam(c echo.Context) string {
	if period := strings.TrimSpace(c.QueryParam("period")); period != "" {
		return period
	}
	return models.PeriodLabel(nowFunc())
}
