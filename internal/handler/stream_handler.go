package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tableservice/internal/domain/model"
	"tableservice/internal/eventbus"
	"tableservice/internal/middleware"
	"tableservice/internal/stream"
	"tableservice/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ライブ購読チャネル（SSE）。1接続＝1 Subscriber で、
// 切断時に必ずBusから外す（defer Close）。
type StreamHandler struct {
	bus    eventbus.Bus
	orders *usecase.OrderUsecase
}

func NewStreamHandler(bus eventbus.Bus, orders *usecase.OrderUsecase) *StreamHandler {
	return &StreamHandler{bus: bus, orders: orders}
}

func (h *StreamHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	g := e.Group("/staff")
	g.Use(middleware.AuthJWT(jwtSecret))
	g.GET("/kitchen/stream", h.kitchen, middleware.RoleGuard(model.RoleKitchen, model.RoleAdmin))
	g.GET("/waiter/stream", h.waiter, middleware.RoleGuard(model.RoleWaiter, model.RoleAdmin))

	e.GET("/t/:token/orders/:id/stream", h.customer)
}

func (h *StreamHandler) kitchen(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	sub := stream.NewKitchenSubscriber(h.bus, restaurantID)
	return h.serve(c, sub)
}

func (h *StreamHandler) waiter(c echo.Context) error {
	restaurantID, ok := getRestaurantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	sub := stream.NewWaiterSubscriber(h.bus, restaurantID)
	return h.serve(c, sub)
}

func (h *StreamHandler) customer(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	// トークンのテーブルに属する注文かを先に確かめる
	if _, err := h.orders.GetByToken(c.Request().Context(), c.Param("token"), orderID); err != nil {
		return writeError(c, err)
	}

	sub := stream.NewOrderSubscriber(h.bus, orderID)
	return h.serve(c, sub)
}

func (h *StreamHandler) serve(c echo.Context, sub *stream.Subscriber) error {
	// 取得と解放を必ず対にする。異常切断でもここを通る。
	defer sub.Close()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// 「接続済みだがまだイベントなし」を客側が区別できるように
	if err := writeSSE(w, "connected", map[string]string{"status": "connected"}); err != nil {
		return nil
	}

	ticker := time.NewTicker(stream.KeepaliveInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			// 切断がキャンセル信号。deferで購読解除される。
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case msg := <-sub.Messages():
			if err := writeSSE(w, msg.Name, msg.Payload); err != nil {
				return nil
			}
		}
	}
}

func writeSSE(w *echo.Response, name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	w.Flush()
	return nil
}
