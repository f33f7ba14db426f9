package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sampahku/internal/services"
)

// AccountHandler manages RT accounts and the admin's own credentials
type AccountHandler struct {
	accounts *services.AccountService
}

func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AccountHandler) ListAccounts(c echo.Context) error {
	accounts, err := h.accounts.ListRTAccounts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accounts)
}

func (h *AccountHandler) GetAccount(c echo.Context) error {
	acc, err := h.accounts.GetRTAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *AccountHandler) StoreAccount(c echo.Context) error {
	var in services.RTAccountInput
	if err := bind(c, &in); err != nil {
		return err
	}
	acc, err := h.accounts.CreateRTAccount(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, acc)
}

func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	var upd services.RTAccountUpdate
	if err := bind(c, &upd); err != nil {
		return err
	}
	acc, err := h.accounts.UpdateRTAccount(c.Request().Context(), c.Param("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *AccountHandler) DeactivateAccount(c echo.Context) error {
	return h.setDeactivated(c, true)
}

func (h *AccountHandler) ActivateAccount(c echo.Context) error {
	return h.setDeactivated(c, false)
}

func (h *AccountHandler) setDeactivated(c echo.Context, deactivated bool) error {
	acc, err := h.accounts.SetRTAccountDeactivated(c.Request().Context(), c.Param("id"), deactivated)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	if err := h.accounts.DeleteRTAccount(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateAdminCredentials changes the admin's username and/or password
func (h *AccountHandler) UpdateAdminCredentials(c echo.Context) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.accounts.UpdateAdminCredentials(c.Request().Context(), req.Username, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "updated"})
}
