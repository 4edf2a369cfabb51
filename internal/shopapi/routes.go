package shopapi

import (
	"context"
	"time"

	"github.com/infoabcd/Warehouse-Query-System/internal/app"
	"github.com/infoabcd/Warehouse-Query-System/internal/webserver"
	"github.com/labstack/echo/v4"
)

// Register attaches appCtx and every API route to srv.
func Register(srv *webserver.Server, appCtx app.AppContext) {
	srv.Use(AppContextMiddleware(appCtx))

	registerAuthRoutes(srv)
	registerCatalogRoutes(srv)
	registerAdminRoutes(srv)
	registerMediaRoutes(srv)
	srv.GET("/healthz", webserver.Public, healthz)
}

func healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()
	if err := GetAppContext(c).Ping(ctx); err != nil {
		return internalError(c, "health check", err)
	}
	return ok(c, map[string]string{"status": "ok"})
}
