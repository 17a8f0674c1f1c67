package handler

import (
	"net/http"
	"strconv"

	"tableservice/internal/domain/model"
	"tableservice/internal/middleware"
	"tableservice/internal/usecase"

	"github.com/labstack/echo/v4"
	qrcode "github.com/skip2/go-qrcode"
)

type AdminTableHandler struct {
	uc      *usecase.TableUsecase
	baseURL string
}

func NewAdminTableHandler(uc *usecase.TableUsecase, baseURL string) *AdminTableHandler {
	return &AdminTableHandler{uc: uc, baseURL: baseURL}
}

type TableCreateRequest struct {
	Number int `json:"number" validate:"required,gt=0"`
}

func (h *AdminTableHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	g := e.Group("/admin/tables")
	g.Use(middleware.AuthJWT(jwtSecret))
	g.Use(middleware.RoleGuard(model.RoleAdmin))

	g.GET("", h.list)
	g.POST("", h.create)
	g.DELETE("/:id", h.deactivate)
	g.POST("/:id/rotate", h.rotateToken)
	g.GET("/:id/qr.png", h.qrPNG)
}

func (h *AdminTableHandler) list(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.List(c.Request().Context(), restaurantID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminTableHandler) create(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req TableCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.uc.Create(c.Request().Context(), restaurantID, req.Number)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminTableHandler) deactivate(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Deactivate(c.Request().Context(), restaurantID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminTableHandler) rotateToken(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.RotateToken(c.Request().Context(), restaurantID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 印刷用のQR画像。中身はトークン入りの客向けURL。
func (h *AdminTableHandler) qrPNG(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	url, err := h.uc.CustomerURL(c.Request().Context(), restaurantID, id, h.baseURL)
	if err != nil {
		return writeError(c, err)
	}

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
