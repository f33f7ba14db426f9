package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sampahku/internal/models"
	"sampahku/internal/services"
)

type RecapHandler struct {
	recaps *services.RecapService
}

func NewRecapHandler(recaps *services.RecapService) *RecapHandler {
	return &RecapHandler{recaps: recaps}
}

// Recap returns the kelurahan recap for ?period=. RT heads get only their own area row.
func (h *RecapHandler) Recap(c echo.Context) error {
	recap, err := h.recaps.Recap(c.Request().Context(), periodParam(c))
	if err != nil {
		return err
	}

	p := principal(c)
	if p.Role != models.RoleRT {
		return c.JSON(http.StatusOK, recap)
	}
	for _, a := range recap.Areas {
		if a.RT == p.RT && a.RW == p.RW {
			return c.JSON(http.StatusOK, a)
		}
	}
	return c.JSON(http.StatusOK, services.AreaRecap{RT: p.RT, RW: p.RW})
}
