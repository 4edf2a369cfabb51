package shopapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/infoabcd/Warehouse-Query-System/internal/catalog"
	"github.com/infoabcd/Warehouse-Query-System/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// commodityResponse is returned by create and update
type commodityResponse struct {
	Message   string                 `json:"message"`
	Commodity *catalog.CommodityView `json:"commodity"`
}

// registerAdminRoutes registers the commodity mutation endpoints
func registerAdminRoutes(srv *webserver.Server) {
	srv.POST("/admin/create", webserver.AdminOnly, createCommodity)
	srv.PUT("/admin/update/:id", webserver.AdminOnly, updateCommodity)
	srv.DELETE("/admin/delete/:id", webserver.AdminOnly, deleteCommodity)
	srv.GET("/admin/export", webserver.AdminOnly, exportCommodities)
}

func createCommodity(c echo.Context) error {
	var payload catalog.CommodityInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse commodity", nil)
	}
	view, err := GetAppContext(c).Catalog().Create(c.Request().Context(), &payload)
	if err != nil {
		if handled, rerr := validationFailed(c, err); handled {
			return rerr
		}
		return internalError(c, "create commodity", err)
	}
	return created(c, commodityResponse{Message: "Commodity created", Commodity: view})
}

func updateCommodity(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid commodity ID", nil)
	}
	var payload catalog.CommodityInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse commodity", nil)
	}
	view, err := GetAppContext(c).Catalog().Update(c.Request().Context(), id, &payload)
	if err != nil {
		if handled, rerr := validationFailed(c, err); handled {
			return rerr
		}
		if errors.Is(err, catalog.ErrCommodityNotFound) {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Commodity not found", nil)
		}
		return internalError(c, "update commodity", err)
	}
	return ok(c, commodityResponse{Message: "Commodity updated", Commodity: view})
}

func deleteCommodity(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid commodity ID", nil)
	}
	err := GetAppContext(c).Catalog().Delete(c.Request().Context(), id)
	if errors.Is(err, catalog.ErrCommodityNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Commodity not found", nil)
	}
	if err != nil {
		return internalError(c, "delete commodity", err)
	}
	return message(c, http.StatusOK, "Commodity deleted")
}

func exportCommodities(c echo.Context) error {
	var buf bytes.Buffer
	if err := GetAppContext(c).Catalog().Export(c.Request().Context(), &buf); err != nil {
		return internalError(c, "export commodities", err)
	}
	filename := fmt.Sprintf("commodities-%s.csv", time.Now().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
