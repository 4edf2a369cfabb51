package shopapi

import (
	"net/http"

	"github.com/infoabcd/Warehouse-Query-System/internal/auth"
	"github.com/infoabcd/Warehouse-Query-System/internal/catalog"
	"github.com/infoabcd/Warehouse-Query-System/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// registerCatalogRoutes registers the storefront read endpoints
func registerCatalogRoutes(srv *webserver.Server) {
	srv.GET("/", webserver.Identified, listCommodities)
	srv.GET("/products/:id", webserver.Identified, getCommodity)
	srv.GET("/search/:key", webserver.Identified, getCommodityByKey)
	srv.GET("/search/title/t", webserver.Public, searchByTitle)
	srv.GET("/search/assort/:categoryId", webserver.Identified, listByCategory)
	srv.GET("/categories", webserver.Public, listCategories)
}

func viewer(c echo.Context) *auth.Identity {
	id, _ := webserver.IdentityFrom(c)
	return id
}

func listCommodities(c echo.Context) error {
	page, err := GetAppContext(c).Catalog().List(c.Request().Context(), viewer(c), pagination(c))
	if err != nil {
		return internalError(c, "list commodities", err)
	}
	return paged(c, page)
}

func getCommodity(c echo.Context) error {
	return showCommodity(c, "id")
}

// getCommodityByKey is the legacy alias of getCommodity
func getCommodityByKey(c echo.Context) error {
	return showCommodity(c, "key")
}

func showCommodity(c echo.Context, param string) error {
	id, valid := parseIDParam(c, param)
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid commodity ID", nil)
	}
	view, err := GetAppContext(c).Catalog().Get(c.Request().Context(), viewer(c), id)
	if errors.Is(err, catalog.ErrCommodityNotFound) {
		return notFoundPayload(c, "Commodity not found")
	}
	if err != nil {
		return internalError(c, "get commodity", err)
	}
	return ok(c, view)
}

func searchByTitle(c echo.Context) error {
	page, err := GetAppContext(c).Catalog().SearchTitle(c.Request().Context(), c.QueryParam("title"), pagination(c))
	if errors.Is(err, catalog.ErrEmptySearch) {
		return notFoundPayload(c, "No matching commodities")
	}
	if err != nil {
		return internalError(c, "search commodities", err)
	}
	return paged(c, page)
}

func listByCategory(c echo.Context) error {
	categoryID, valid := parseIDParam(c, "categoryId")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	page, err := GetAppContext(c).Catalog().ListByCategory(c.Request().Context(), viewer(c), categoryID, pagination(c))
	if err != nil {
		return internalError(c, "list commodities by category", err)
	}
	return paged(c, page)
}

func listCategories(c echo.Context) error {
	cats, err := GetAppContext(c).Catalog().Categories(c.Request().Context())
	if err != nil {
		return internalError(c, "list categories", err)
	}
	return ok(c, cats)
}
