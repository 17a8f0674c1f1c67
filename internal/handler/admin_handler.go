package handler

import (
	"net/http"
	"strconv"
	"time"

	"tableservice/internal/domain/model"
	"tableservice/internal/middleware"
	repo "tableservice/internal/repository"
	"tableservice/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 設定・レポート・注文一覧のadmin API
type AdminHandler struct {
	restaurants *usecase.RestaurantUsecase
	reports     *usecase.ReportUsecase
	orders      *usecase.OrderUsecase
}

func NewAdminHandler(
	restaurants *usecase.RestaurantUsecase,
	reports *usecase.ReportUsecase,
	orders *usecase.OrderUsecase,
) *AdminHandler {
	return &AdminHandler{restaurants: restaurants, reports: reports, orders: orders}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(jwtSecret))
	g.Use(middleware.RoleGuard(model.RoleAdmin))

	g.GET("/settings", h.getSettings)
	g.PATCH("/settings", h.updateSettings)
	g.GET("/orders", h.listOrders)
	g.GET("/reports/daily", h.reportDaily)
	g.GET("/reports/status", h.reportStatus)
}

func (h *AdminHandler) getSettings(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.restaurants.Get(c.Request().Context(), restaurantID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) updateSettings(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.PaymentFlagsInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.restaurants.UpdatePaymentFlags(c.Request().Context(), restaurantID, req); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type AdminOrderListResponse struct {
	Items []usecase.OrderOutput `json:"items"`
	Total int64                 `json:"total"`
}

func (h *AdminHandler) listOrders(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	f := repo.AdminOrderListFilter{
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 20),
		Status: c.QueryParam("status"),
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		// 終端は当日いっぱい
		t = t.AddDate(0, 0, 1).Add(-time.Second)
		f.To = &t
	}

	items, total, err := h.orders.ListAdmin(c.Request().Context(), restaurantID, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, AdminOrderListResponse{Items: items, Total: total})
}

func (h *AdminHandler) reportDaily(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	from, to, errResp := parseRangeQuery(c)
	if errResp != nil {
		return errResp
	}

	out, err := h.reports.Daily(c.Request().Context(), restaurantID, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) reportStatus(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	from, to, errResp := parseRangeQuery(c)
	if errResp != nil {
		return errResp
	}

	out, err := h.reports.StatusBreakdown(c.Request().Context(), restaurantID, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func parseIntQuery(c echo.Context, key string, def int) int {
	v := c.QueryParam(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func parseRangeQuery(c echo.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		from = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		t = t.AddDate(0, 0, 1).Add(-time.Second)
		to = &t
	}
	return from, to, nil
}
