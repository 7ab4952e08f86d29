package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/domain/entity"
)

// Guards bundles the middleware every route group is built from.
type Guards struct {
	Auth    *middleware.AuthMiddleware
	Session *middleware.SessionMiddleware
}

// Public routes still load a session when a valid token is sent.
func (g Guards) Public(e *echo.Echo, prefix string) *echo.Group {
	group := e.Group(prefix)
	group.Use(g.Auth.Optional, g.Session.Load)
	return group
}

func (g Guards) Authenticated(e *echo.Echo, prefix string) *echo.Group {
	group := e.Group(prefix)
	group.Use(g.Auth.Authenticate, g.Session.Load)
	return group
}

func (g Guards) Role(e *echo.Echo, prefix string, role entity.Role) *echo.Group {
	group := g.Authenticated(e, prefix)
	group.Use(g.Session.RequireRole(role))
	return group
}
