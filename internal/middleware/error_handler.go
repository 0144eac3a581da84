package middleware

import (
	"errors"
	"net/http"

	"github.com/MidnightMr/parking-service/internal/service"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as the JSON error envelope. Handlers map
// most service errors to statuses themselves; anything that escapes unmapped
// still gets a sensible status from the sentinel fallback instead of a
// blanket 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	} else {
		code = statusForServiceError(err)
	}

	_ = c.JSON(code, map[string]string{"message": msg})
}

func statusForServiceError(err error) int {
	switch {
	case errors.Is(err, service.ErrLotNotFound),
		errors.Is(err, service.ErrSpaceNotFound),
		errors.Is(err, service.ErrReservationNotFound),
		errors.Is(err, service.ErrRecordNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPlateNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrSpaceUnavailable),
		errors.Is(err, service.ErrSpaceConflict),
		errors.Is(err, service.ErrAlreadyExited),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInterval),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrReservationMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
