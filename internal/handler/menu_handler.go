package handler

import (
	"net/http"

	"tableservice/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 客のメニュー閲覧（QRのトークンが認可の全て）
type MenuHandler struct {
	uc *usecase.MenuUsecase
}

func NewMenuHandler(uc *usecase.MenuUsecase) *MenuHandler {
	return &MenuHandler{uc: uc}
}

func (h *MenuHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/t/:token/menu", h.browse)
}

func (h *MenuHandler) browse(c echo.Context) error {
	out, err := h.uc.BrowseByToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
