package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MidnightMr/parking-service/internal/dto"
	"github.com/MidnightMr/parking-service/internal/middleware"
	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/service"
	"github.com/labstack/echo/v4"
)

type LotHandler struct {
	lots service.LotService
}

func NewLotHandler(lots service.LotService) *LotHandler {
	return &LotHandler{lots: lots}
}

// RegisterRoutes leaves reads open and guards mutations with auth; the admin
// role check itself lives in the service.
func (h *LotHandler) RegisterRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("", h.ListLots)
	g.GET("/:id", h.GetLot)
	g.POST("", h.CreateLot, auth)
	g.PUT("/:id", h.UpdateLot, auth)
	g.PUT("/:id/status", h.UpdateLotStatus, auth)
	g.PUT("/:id/spaces/:spaceNumber", h.SetSpaceStatus, auth)
	g.DELETE("/:id", h.DeleteLot, auth)
}

func (h *LotHandler) ListLots(c echo.Context) error {
	var status *models.LotStatus
	if s := c.QueryParam("status"); s != "" {
		ls := models.LotStatus(s)
		status = &ls
	}

	lots, err := h.lots.List(c.Request().Context(), status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.LotResponse, len(lots))
	for i, l := range lots {
		resp[i] = dto.ToLotResponse(&l)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *LotHandler) GetLot(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	lot, err := h.lots.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "parking lot not found")
	}
	return c.JSON(http.StatusOK, dto.ToLotResponse(lot))
}

func (h *LotHandler) CreateLot(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	var req dto.CreateLotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Address == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and address are required")
	}

	rates := make([]models.SpecialRate, len(req.SpecialRates))
	for i, r := range req.SpecialRates {
		rates[i] = models.SpecialRate{
			VehicleType: r.VehicleType,
			HourlyRate:  r.HourlyRate,
			Description: r.Description,
		}
	}

	lot, err := h.lots.Create(c.Request().Context(), actor, service.CreateLotCommand{
		Name:         req.Name,
		Address:      req.Address,
		TotalSpaces:  req.TotalSpaces,
		HourlyRate:   req.HourlyRate,
		SpecialRates: rates,
		SpaceNumbers: req.SpaceNumbers,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidState):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToLotResponse(lot))
}

func (h *LotHandler) UpdateLot(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateLotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cmd := service.UpdateLotCommand{
		Name:       req.Name,
		Address:    req.Address,
		HourlyRate: req.HourlyRate,
	}
	if req.SpecialRates != nil {
		rates := make([]models.SpecialRate, len(*req.SpecialRates))
		for i, r := range *req.SpecialRates {
			rates[i] = models.SpecialRate{
				VehicleType: r.VehicleType,
				HourlyRate:  r.HourlyRate,
				Description: r.Description,
			}
		}
		cmd.SpecialRates = &rates
	}

	lot, err := h.lots.Update(c.Request().Context(), actor, id, cmd)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrLotNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidState):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, dto.ToLotResponse(lot))
}

func (h *LotHandler) UpdateLotStatus(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateLotStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	lot, err := h.lots.UpdateStatus(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrLotNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, dto.ToLotResponse(lot))
}

func (h *LotHandler) SetSpaceStatus(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.SetSpaceStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	space, err := h.lots.SetSpaceStatus(c.Request().Context(), actor, id, c.Param("spaceNumber"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrSpaceNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSpaceUnavailable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, space)
}

func (h *LotHandler) DeleteLot(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.lots.Delete(c.Request().Context(), actor, id); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrLotNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidState):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}
