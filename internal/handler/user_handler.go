package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MidnightMr/parking-service/internal/dto"
	"github.com/MidnightMr/parking-service/internal/middleware"
	"github.com/MidnightMr/parking-service/internal/service"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	users  service.UserService
	wallet service.WalletService
}

func NewUserHandler(users service.UserService, wallet service.WalletService) *UserHandler {
	return &UserHandler{users: users, wallet: wallet}
}

func (h *UserHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/profile", h.Profile)
	g.PUT("/profile", h.UpdateProfile)
	g.POST("/license-plates", h.AddPlate)
	g.DELETE("/license-plates/:plateNumber", h.RemovePlate)
	g.PUT("/license-plates/:plateNumber/default", h.SetDefaultPlate)
	g.GET("/wallet", h.Wallet)
	g.POST("/wallet/topup", h.TopUp)

	// Admin directory; the role check lives in the service.
	g.GET("", h.ListUsers)
	g.GET("/:id", h.GetUser)
	g.PUT("/:id", h.UpdateUser)
	g.DELETE("/:id", h.DeleteUser)
}

func (h *UserHandler) Profile(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	user, err := h.users.Profile(c.Request().Context(), actor)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), actor, service.UpdateProfileCommand{
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrUserExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	users, err := h.users.ListUsers(c.Request().Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = dto.ToUserResponse(&users[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.users.GetUser(c.Request().Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.UpdateUser(c.Request().Context(), actor, id, service.UpdateUserCommand{
		Name:  req.Name,
		Phone: req.Phone,
		Role:  req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidState):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.users.DeleteUser(c.Request().Context(), actor, id); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidState):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) AddPlate(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	var req dto.AddPlateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PlateNumber == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "plate_number is required")
	}

	user, err := h.users.AddPlate(c.Request().Context(), actor, req.PlateNumber, req.VehicleType, req.IsDefault)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

func (h *UserHandler) RemovePlate(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	if err := h.users.RemovePlate(c.Request().Context(), actor, c.Param("plateNumber")); err != nil {
		if errors.Is(err, service.ErrPlateNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) SetDefaultPlate(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	if err := h.users.SetDefaultPlate(c.Request().Context(), actor, c.Param("plateNumber")); err != nil {
		if errors.Is(err, service.ErrPlateNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) Wallet(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	userID := actor.UserID
	if q := c.QueryParam("user_id"); q != "" {
		id, err := strconv.ParseUint(q, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		userID = uint(id)
	}

	user, txs, err := h.wallet.Statement(c.Request().Context(), actor, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.WalletResponse{
		Balance:      user.WalletBalance,
		Transactions: txs,
	})
}

func (h *UserHandler) TopUp(c echo.Context) error {
	actor := middleware.ActorFromContext(c)

	var req dto.TopUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.wallet.TopUp(c.Request().Context(), actor, req.Amount, req.Method)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}
