package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sampahku/internal/services"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorHandler maps service errors to HTTP statuses and a JSON body
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, detail := Classify(err)
		if code >= http.StatusInternalServerError {
			logger.Error("Request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, ErrorBody{Error: detail})
		}
		if writeErr != nil {
			logger.Error("Failed to write error response", zap.Error(writeErr))
		}
	}
}

// Classify returns the status code and body for an error
func Classify(err error) (int, ErrorDetail) {
	var (
		he *echo.HTTPError
		ve *services.ValidationError
		pe *services.PersistenceError
	)

	switch {
	case errors.As(err, &he):
		msg, ok := he.Message.(string)
		if !ok || msg == "" {
			msg = http.StatusText(he.Code)
		}
		return he.Code, ErrorDetail{Code: codeForStatus(he.Code), Message: msg}
	case errors.As(err, &ve):
		status := http.StatusBadRequest
		code := "validation_failed"
		switch {
		case errors.Is(err, services.ErrDuplicateNIK), errors.Is(err, services.ErrDuplicatePayment), errors.Is(err, services.ErrDuplicateUsername):
			status, code = http.StatusConflict, "conflict"
		case errors.Is(err, services.ErrInvalidTransition):
			status, code = http.StatusConflict, "invalid_transition"
		}
		return status, ErrorDetail{Code: code, Message: ve.Message, Field: ve.Field}
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, ErrorDetail{Code: "not_found", Message: "Data tidak ditemukan"}
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorDetail{Code: "invalid_credentials", Message: "Username atau kata sandi salah"}
	case errors.Is(err, services.ErrAccountDeactivated):
		return http.StatusForbidden, ErrorDetail{Code: "account_deactivated", Message: "Akun telah dinonaktifkan"}
	case errors.Is(err, services.ErrProofStorageUnavailable):
		return http.StatusServiceUnavailable, ErrorDetail{Code: "storage_unavailable", Message: "Unggah bukti pembayaran belum tersedia"}
	case errors.As(err, &pe):
		return http.StatusBadGateway, ErrorDetail{Code: "persistence_failed", Message: "Gagal menyimpan atau membaca data, silakan coba lagi"}
	}
	return http.StatusInternalServerError, ErrorDetail{Code: "internal", Message: "Terjadi kesalahan, silakan coba lagi nanti"}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	}
	if status >= http.StatusInternalServerError {
		return "internal"
	}
	return "error"
}
