package handler

import (
	"errors"
	"net/http"

	"github.com/MidnightMr/parking-service/internal/dto"
	"github.com/MidnightMr/parking-service/internal/middleware"
	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/service"
	"github.com/labstack/echo/v4"
)

type ReservationHandler struct {
	reservations service.ReservationService
}

func NewReservationHandler(reservations service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

func (h *ReservationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateReservation)
	g.GET("", h.ListReservations)
	g.GET("/:id", h.GetReservation)
	g.POST("/:id/pay", h.PayReservation)
	g.POST("/:id/cancel", h.CancelReservation)
}

func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	var req dto.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SpaceNumber == "" || req.LicensePlate == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "space_number and license_plate are required")
	}

	res, err := h.reservations.Create(c.Request().Context(), actor, service.CreateReservationCommand{
		LotID:        req.LotID,
		SpaceNumber:  req.SpaceNumber,
		LicensePlate: req.LicensePlate,
		VehicleType:  req.VehicleType,
		StartTime:    req.StartTime,
		ExpiryTime:   req.ExpiryTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInterval):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrLotNotFound), errors.Is(err, service.ErrSpaceNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSpaceConflict), errors.Is(err, service.ErrSpaceUnavailable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidState):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, res)
}

func (h *ReservationHandler) ListReservations(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	var status *models.ReservationStatus
	if s := c.QueryParam("status"); s != "" {
		rs := models.ReservationStatus(s)
		status = &rs
	}

	list, err := h.reservations.List(c.Request().Context(), actor, status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res, err := h.reservations.Get(c.Request().Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) PayReservation(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.PayRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Method == "" {
		req.Method = models.PayWallet
	}

	res, err := h.reservations.Pay(c.Request().Context(), actor, id, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrAlreadyPaid):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInsufficientFunds):
			return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
		case errors.Is(err, service.ErrInvalidState):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res, err := h.reservations.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidState):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, res)
}
