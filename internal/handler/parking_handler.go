package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/MidnightMr/parking-service/internal/dto"
	"github.com/MidnightMr/parking-service/internal/middleware"
	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/service"
	"github.com/labstack/echo/v4"
)

type ParkingHandler struct {
	parking service.ParkingService
}

func NewParkingHandler(parking service.ParkingService) *ParkingHandler {
	return &ParkingHandler{parking: parking}
}

func (h *ParkingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/entry", h.Entry)
	g.POST("/:id/exit", h.Exit)
	g.POST("/:id/pay", h.Pay)
	g.GET("/:id", h.GetRecord)
	g.GET("", h.ListRecords)
}

func (h *ParkingHandler) Entry(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	var req dto.EntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SpaceNumber == "" || req.LicensePlate == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "space_number and license_plate are required")
	}

	record, err := h.parking.Entry(c.Request().Context(), actor, service.EntryCommand{
		LotID:         req.LotID,
		SpaceNumber:   req.SpaceNumber,
		LicensePlate:  req.LicensePlate,
		VehicleType:   req.VehicleType,
		ReservationID: req.ReservationID,
		UserID:        req.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLotNotFound), errors.Is(err, service.ErrSpaceNotFound),
			errors.Is(err, service.ErrReservationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSpaceUnavailable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrReservationMismatch), errors.Is(err, service.ErrInvalidState):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, record)
}

func (h *ParkingHandler) Exit(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	record, err := h.parking.Exit(c.Request().Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrAlreadyExited):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrPartialSettlement):
			// Fee is committed but the space release failed; 202 marks the
			// stay as settled-but-not-released until the sweeper finishes it.
			log.Printf("[Parking] record %d: %v", id, err)
			return c.JSON(http.StatusAccepted, record)
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, record)
}

func (h *ParkingHandler) Pay(c echo.Context) error {
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

	record, err := h.parking.Pay(c.Request().Context(), actor, id, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
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
	return c.JSON(http.StatusOK, record)
}

func (h *ParkingHandler) GetRecord(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	record, err := h.parking.Get(c.Request().Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, record)
}

func (h *ParkingHandler) ListRecords(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	activeOnly := c.QueryParam("active") == "true"

	records, err := h.parking.List(c.Request().Context(), actor, activeOnly)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, records)
}
