package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sampahku/internal/models"
	"sampahku/internal/repository"
	"sampahku/internal/services"
)

type DisputeHandler struct {
	disputes *services.DisputeService
	citizens *services.CitizenService
}

func NewDisputeHandler(disputes *services.DisputeService, citizens *services.CitizenService) *DisputeHandler {
	return &DisputeHandler{disputes: disputes, citizens: citizens}
}

type disputeRequest struct {
	Reason    string `json:"reason"`
	PaymentID string `json:"paymentId"`
}

type transitionRequest struct {
	Status models.DisputeStatus `json:"status"`
	Note   string               `json:"note"`
}

// SubmitDispute files a dispute for the signed-in citizen. Name and area
// come from the citizen record, not the request.
func (h *DisputeHandler) SubmitDispute(c echo.Context) error {
	var req disputeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	citizen, err := h.citizens.GetCitizen(ctx, principal(c).ID)
	if err != nil {
		return err
	}
	dispute, err := h.disputes.CreateDispute(ctx, services.DisputeInput{
		CitizenID:   citizen.ID,
		CitizenName: citizen.Name,
		RT:          citizen.RT,
		RW:          citizen.RW,
		Reason:      req.Reason,
		PaymentID:   req.PaymentID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dispute)
}

// MyDisputes lists disputes filed by the signed-in citizen
func (h *DisputeHandler) MyDisputes(c echo.Context) error {
	views, err := h.disputes.ListCitizenDisputes(c.Request().Context(), principal(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// ListDisputes lists disputes of the caller's area, optionally by ?status=
func (h *DisputeHandler) ListDisputes(c echo.Context) error {
	views, err := h.disputes.ListDisputes(c.Request().Context(), repository.DisputeFilter{
		Status: models.DisputeStatus(c.QueryParam("status")),
		Area:   scopedArea(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// TransitionDispute changes a dispute's status
func (h *DisputeHandler) TransitionDispute(c echo.Context) error {
	ctx := c.Request().Context()
	current, err := h.disputes.GetDispute(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if err := ensureArea(c, models.Area{RT: current.RT, RW: current.RW}); err != nil {
		return err
	}

	var req transitionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	dispute, err := h.disputes.TransitionDispute(ctx, current.ID, req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dispute)
}

func (h *DisputeHandler) DeleteDispute(c echo.Context) error {
	if err := h.disputes.DeleteDispute(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
