package handler

import (
	"context"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/domain/entity"
	ws "agrimarket/internal/infrastructure/websocket"
	"agrimarket/internal/usecase"
	"agrimarket/pkg/errors"
	"agrimarket/pkg/logger"
	"agrimarket/pkg/response"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	consoleUseCase *usecase.OrderConsoleUseCase
	upgrader       gorillaws.Upgrader
}

func NewWebSocketHandler(wsManager *ws.Manager, consoleUseCase *usecase.OrderConsoleUseCase, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		consoleUseCase: consoleUseCase,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

// checkOrigin allows every origin when the list is empty or contains "*".
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket upgrades the connection and registers it for live events.
// Farmers also get a fresh order snapshot whenever their orders change.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	s := middleware.GetSession(c)
	if !s.Authenticated() {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("websocket upgrade failed for %s: %v", s.UserID, err)
		return nil
	}

	client := ws.NewClient(s.UserID, conn)
	if !h.wsManager.Add(client) {
		conn.Close()
		return nil
	}

	if s.Role == entity.RoleFarmer {
		h.watchOrders(s, client)
	}

	go client.WritePump()
	go client.ReadPump(h.wsManager)

	return nil
}

func (h *WebSocketHandler) watchOrders(s usecase.Session, client *ws.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-client.Done()
		cancel()
	}()

	client.OnRefresh = func() {
		orders, err := h.consoleUseCase.ListOrders(ctx, s)
		if err != nil {
			client.Push(ws.MessageTypeError, map[string]string{"message": "failed to load orders"})
			return
		}
		client.Push(ws.MessageTypeOrdersSnapshot, orders)
	}

	go func() {
		err := h.consoleUseCase.Watch(ctx, s, func(orders []*entity.Order) {
			client.Push(ws.MessageTypeOrdersSnapshot, orders)
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("order watch for %s stopped: %v", s.UserID, err)
			client.Push(ws.MessageTypeRefresh, map[string]string{"message": "live updates paused, send refresh to reload"})
		}
	}()
}
