package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/handler"
)

// SetupWebSocketRouter registers the live order channel. The token may come
// from the Authorization header or ?token=.
func SetupWebSocketRouter(e *echo.Echo, guards Guards, wsHandler *handler.WebSocketHandler) {
	e.GET("/v1/ws", wsHandler.HandleWebSocket, guards.Auth.Authenticate, guards.Session.Load)
}
