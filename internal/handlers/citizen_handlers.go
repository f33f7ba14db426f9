package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sampahku/internal/models"
	"sampahku/internal/services"
)

type CitizenHandler struct {
	citizens *services.CitizenService
}

func NewCitizenHandler(citizens *services.CitizenService) *CitizenHandler {
	return &CitizenHandler{citizens: citizens}
}

// ListCitizens returns the citizens of the caller's area
func (h *CitizenHandler) ListCitizens(c echo.Context) error {
	citizens, err := h.citizens.ListCitizens(c.Request().Context(), scopedArea(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, citizens)
}

func (h *CitizenHandler) GetCitizen(c echo.Context) error {
	citizen, err := h.loadInScope(c, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, citizen)
}

// StoreCitizen registers a citizen. RT heads always register into their own area.
func (h *CitizenHandler) StoreCitizen(c echo.Context) error {
	var in services.CitizenInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if p := principal(c); p != nil && p.Role == models.RoleRT {
		in.RT, in.RW = p.RT, p.RW
	}

	citizen, err := h.citizens.AddCitizen(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, citizen)
}

func (h *CitizenHandler) UpdateCitizen(c echo.Context) error {
	current, err := h.loadInScope(c, c.Param("id"))
	if err != nil {
		return err
	}

	var in services.CitizenInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if p := principal(c); p != nil && p.Role == models.RoleRT {
		in.RT, in.RW = current.RT, current.RW
	}

	citizen, err := h.citizens.UpdateCitizen(c.Request().Context(), current.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, citizen)
}

func (h *CitizenHandler) DeleteCitizen(c echo.Context) error {
	current, err := h.loadInScope(c, c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.citizens.DeleteCitizen(c.Request().Context(), current.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MyProfile returns the signed-in citizen
func (h *CitizenHandler) MyProfile(c echo.Context) error {
	citizen, err := h.citizens.GetCitizen(c.Request().Context(), principal(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, citizen)
}

func (h *CitizenHandler) loadInScope(c echo.Context, id string) (*models.Citizen, error) {
	citizen, err := h.citizens.GetCitizen(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if err := ensureArea(c, citizen.Area()); err != nil {
		return nil, err
	}
	return citizen, nil
}
