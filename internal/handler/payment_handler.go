package handler

import (
	"net/http"
	"strconv"

	"tableservice/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type VerifyPaymentRequest struct {
	GatewayPaymentRef string `json:"gateway_payment_ref" validate:"required"`
	Signature         string `json:"signature" validate:"required"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	t := e.Group("/t/:token")
	t.POST("/prepaid", h.beginPrepaid)
	t.POST("/orders/:id/settle", h.settleBill)

	// 検証はトークン不要：ゲートウェイ参照＋署名がそのまま証明になる
	e.POST("/payments/:ref/verify", h.verify)
}

func (h *PaymentHandler) beginPrepaid(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.uc.BeginPrepaidOrder(c.Request().Context(), c.Param("token"), usecase.CreateOrderInput{
		Items: req.Items,
		Notes: req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *PaymentHandler) settleBill(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.SettleBill(c.Request().Context(), c.Param("token"), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *PaymentHandler) verify(c echo.Context) error {
	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.uc.Complete(c.Request().Context(), c.Param("ref"), req.GatewayPaymentRef, req.Signature)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
