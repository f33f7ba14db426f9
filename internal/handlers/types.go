package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"sampahku/internal/middleware"
	"sampahku/internal/models"
	"sampahku/internal/services"
)

// nowFunc is the clock used for default periods
var nowFunc = time.Now

// StatusResponse is returned by endpoints with nothing else to say
type StatusResponse struct {
	Status string `json:"status"`
}

// bind decodes the request body, turning malformed input into a 400
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Format permintaan tidak valid")
	}
	return nil
}

func principal(c echo.Context) *services.Principal {
	return middleware.CurrentPrincipal(c)
}

// scopedArea returns the area a principal may see: its own for RT heads,
// the optional rt/rw query for admins
func scopedArea(c echo.Context) models.Area {
	p := principal(c)
	if p != nil && p.Role == models.RoleRT {
		return p.Area()
	}
	return models.Area{
		RT: strings.TrimSpace(c.QueryParam("rt")),
		RW: strings.TrimSpace(c.QueryParam("rw")),
	}
}

// ensureArea rejects RT heads acting outside their own RT/RW
func ensureArea(c echo.Context, area models.Area) error {
	p := principal(c)
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Silakan masuk terlebih dahulu")
	}
	if p.Role == models.RoleRT && p.Area() != area {
		return echo.NewHTTPError(http.StatusForbidden, "Data berada di luar wilayah RT Anda")
	}
	return nil
}
