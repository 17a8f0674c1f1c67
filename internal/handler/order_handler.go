package handler

import (
	"net/http"
	"strconv"

	"tableservice/internal/domain/model"
	"tableservice/internal/middleware"
	"tableservice/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 客向けの注文API。認可はパスのテーブルトークンだけ。
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderCreateRequest struct {
	Items []usecase.OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Notes string                   `json:"notes" validate:"max=1000"`
}

type AddItemsRequest struct {
	Items []usecase.OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/t/:token")

	g.POST("/orders", h.create)
	g.POST("/orders/:id/items", h.addItems)
	g.GET("/orders/:id", h.detail)
	g.GET("/orders/open", h.open)
	g.POST("/call-waiter", h.callWaiter)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.uc.CreatePostpaid(c.Request().Context(), c.Param("token"), usecase.CreateOrderInput{
		Items: req.Items,
		Notes: req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) addItems(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req AddItemsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.uc.AddItems(c.Request().Context(), c.Param("token"), orderID, req.Items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetByToken(c.Request().Context(), c.Param("token"), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) open(c echo.Context) error {
	out, err := h.uc.GetOpenByToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) callWaiter(c echo.Context) error {
	if err := h.uc.CallWaiter(c.Request().Context(), c.Param("token")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// スタッフ側の注文API（JWT必須）
type StaffOrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewStaffOrderHandler(uc *usecase.OrderUsecase) *StaffOrderHandler {
	return &StaffOrderHandler{uc: uc}
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *StaffOrderHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	g := e.Group("/staff")
	g.Use(middleware.AuthJWT(jwtSecret))

	g.GET("/kitchen/orders", h.kitchenQueue, middleware.RoleGuard(model.RoleKitchen, model.RoleAdmin))
	g.GET("/waiter/orders", h.waiterQueue, middleware.RoleGuard(model.RoleWaiter, model.RoleAdmin))
	g.PATCH("/orders/:id/status", h.updateStatus)
}

func (h *StaffOrderHandler) kitchenQueue(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListQueue(c.Request().Context(), restaurantID, []model.OrderStatus{
		model.OrderStatusPlaced, model.OrderStatusPreparing,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StaffOrderHandler) waiterQueue(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListQueue(c.Request().Context(), restaurantID, []model.OrderStatus{
		model.OrderStatusReady,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StaffOrderHandler) updateStatus(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	role, ok := getRole(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.uc.AdvanceStatus(c.Request().Context(), model.Role(role), restaurantID, orderID, model.OrderStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
