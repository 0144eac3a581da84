package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MidnightMr/parking-service/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler_SentinelFallback(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"lot not found", service.ErrLotNotFound, http.StatusNotFound},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"insufficient funds", service.ErrInsufficientFunds, http.StatusPaymentRequired},
		{"space conflict", service.ErrSpaceConflict, http.StatusConflict},
		{"invalid window", service.ErrInvalidInterval, http.StatusBadRequest},
		{"bad token", service.ErrTokenInvalid, http.StatusUnauthorized},
		{"wrapped sentinel", fmt.Errorf("create reservation: %w", service.ErrSpaceUnavailable), http.StatusConflict},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			ErrorHandler(tc.err, c)

			assert.Equal(t, tc.code, rec.Code)
			assert.Contains(t, rec.Body.String(), "message")
		})
	}
}

func TestErrorHandler_HTTPErrorWins(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(echo.NewHTTPError(http.StatusTeapot, "short and stout"), c)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, rec.Body.String(), "short and stout")
}
