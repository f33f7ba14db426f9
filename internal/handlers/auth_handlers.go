package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sampahku/internal/middleware"
	"sampahku/internal/models"
	"sampahku/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	accounts     *services.AccountService
	citizens     *services.CitizenService
	sessions     *services.SessionManager
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts *services.AccountService, citizens *services.CitizenService, sessions *services.SessionManager, secureCookie bool) *AuthHandler {
	return &AuthHandler{accounts: accounts, citizens: citizens, sessions: sessions, secureCookie: secureCookie}
}

type loginRequest struct {
	Role     models.Role `json:"role"`
	Username string      `json:"username"`
	Password string      `json:"password"`
}

type citizenLoginRequest struct {
	NIK string `json:"nik"`
	KK  string `json:"kk"`
}

// SessionResponse is returned after a successful sign-in
type SessionResponse struct {
	Token     string             `json:"token"`
	ExpiresIn int                `json:"expiresIn"`
	Principal services.Principal `json:"principal"`
}

// HandleLogin signs in an RT head or the admin
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Role == "" {
		req.Role = models.RoleRT
	}

	p, err := h.accounts.Authenticate(c.Request().Context(), req.Role, req.Username, req.Password)
	if err != nil {
		return err
	}
	return h.startSession(c, *p)
}

// HandleCitizenLogin signs in a citizen with NIK and KK
func (h *AuthHandler) HandleCitizenLogin(c echo.Context) error {
	var req citizenLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	citizen, err := h.citizens.AuthenticateCitizen(c.Request().Context(), req.NIK, req.KK)
	if err != nil {
		return err
	}
	return h.startSession(c, services.Principal{
		ID:   citizen.ID,
		Role: models.RoleCitizen,
		Name: citizen.Name,
		RT:   citizen.RT,
		RW:   citizen.RW,
	})
}

func (h *AuthHandler) startSession(c echo.Context, p services.Principal) error {
	token, err := h.sessions.Issue(p)
	if err != nil {
		return err
	}
	maxAge := int(h.sessions.TTL().Seconds())
	middleware.SetSessionCookie(c, token, maxAge, h.secureCookie)

	return c.JSON(http.StatusOK, SessionResponse{Token: token, ExpiresIn: maxAge, Principal: p})
}

// HandleLogout clears the session cookie
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, StatusResponse{Status: "logged out"})
}

// Me returns the signed-in principal
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, principal(c))
}
