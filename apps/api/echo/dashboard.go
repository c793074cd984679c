package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func registerDashboardAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, s *Server) {
	store := s.deps.Store
	g.GET("/admin/dashboard", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, store.Stats())
	}, jwt, admin)
}

