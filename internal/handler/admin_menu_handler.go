package handler

import (
	"net/http"
	"strconv"

	"tableservice/internal/domain/model"
	"tableservice/internal/middleware"
	"tableservice/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminMenuHandler struct {
	uc *usecase.MenuUsecase
}

func NewAdminMenuHandler(uc *usecase.MenuUsecase) *AdminMenuHandler {
	return &AdminMenuHandler{uc: uc}
}

func (h *AdminMenuHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(jwtSecret))
	g.Use(middleware.RoleGuard(model.RoleAdmin))

	g.GET("/menu", h.list)
	g.POST("/categories", h.createCategory)
	g.PUT("/categories/:id", h.updateCategory)
	g.DELETE("/categories/:id", h.deactivateCategory)
	g.POST("/items", h.createItem)
	g.PUT("/items/:id", h.updateItem)
	g.DELETE("/items/:id", h.deactivateItem)
}

func (h *AdminMenuHandler) list(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListForAdmin(c.Request().Context(), restaurantID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminMenuHandler) createCategory(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.CategoryInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.uc.CreateCategory(c.Request().Context(), restaurantID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminMenuHandler) updateCategory(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req usecase.CategoryInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.uc.UpdateCategory(c.Request().Context(), restaurantID, id, req); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminMenuHandler) deactivateCategory(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeactivateCategory(c.Request().Context(), restaurantID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminMenuHandler) createItem(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.MenuItemInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.uc.CreateItem(c.Request().Context(), restaurantID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminMenuHandler) updateItem(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req usecase.MenuItemInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.uc.UpdateItem(c.Request().Context(), restaurantID, id, req); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminMenuHandler) deactivateItem(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeactivateItem(c.Request().Context(), restaurantID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
