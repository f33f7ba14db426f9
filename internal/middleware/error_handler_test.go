package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"sampahku/internal/services"
)

func TestClassify(t *testing.T) {
	validation := func(field string, err error) error {
		return &services.ValidationError{Field: field, Message: "pesan", Err: err}
	}

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		field   string
		message string
	}{
		{"http error", echo.NewHTTPError(http.StatusForbidden, "dilarang"), http.StatusForbidden, "forbidden", "", "dilarang"},
		{"http error without message", echo.NewHTTPError(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge, "too_large", "", http.StatusText(http.StatusRequestEntityTooLarge)},
		{"validation", validation("nik", services.ErrInvalidNIK), http.StatusBadRequest, "validation_failed", "nik", "pesan"},
		{"duplicate NIK", validation("nik", services.ErrDuplicateNIK), http.StatusConflict, "conflict", "nik", "pesan"},
		{"duplicate payment", validation("period", services.ErrDuplicatePayment), http.StatusConflict, "conflict", "period", "pesan"},
		{"duplicate username", validation("username", services.ErrDuplicateUsername), http.StatusConflict, "conflict", "username", "pesan"},
		{"transition", validation("status", services.ErrInvalidTransition), http.StatusConflict, "invalid_transition", "status", "pesan"},
		{"not found", fmt.Errorf("load: %w", services.ErrCitizenNotFound), http.StatusNotFound, "not_found", "", ""},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "", ""},
		{"deactivated", services.ErrAccountDeactivated, http.StatusForbidden, "account_deactivated", "", ""},
		{"persistence", &services.PersistenceError{Op: "get citizen", Err: errors.New("deadline exceeded")}, http.StatusBadGateway, "persistence_failed", "", ""},
		{"proof storage", services.ErrProofStorageUnavailable, http.StatusServiceUnavailable, "storage_unavailable", "", ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
			assert.Equal(t, tt.field, detail.Field)
			if tt.message != "" {
				assert.Equal(t, tt.message, detail.Message)
			} else {
				assert.NotEmpty(t, detail.Message)
			}
		})
	}
}

func TestErrorHandler_WritesJSON(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop())
	e.GET("/boom", func(c echo.Context) error {
		return &services.PersistenceError{Op: "list", Err: errors.New("unavailable")}
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"persistence_failed","message":"Gagal menyimpan atau membaca data, silakan coba lagi"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
}
