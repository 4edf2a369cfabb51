package shopapi

import (
	"net/http"
	"strconv"

	"github.com/infoabcd/Warehouse-Query-System/internal/app"
	"github.com/infoabcd/Warehouse-Query-System/internal/catalog"
	"github.com/infoabcd/Warehouse-Query-System/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const appContextKey = "warehouse.appctx"

// Message is the body of answers that only carry a human readable message.
type Message struct {
	Message string `json:"message"`
}

// NotFoundPayload answers read endpoints whose target does not exist.
type NotFoundPayload struct {
	Found   bool   `json:"found"`
	Message string `json:"message"`
}

// AppContextMiddleware makes appCtx available to every handler.
func AppContextMiddleware(appCtx app.AppContext) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appContextKey, appCtx)
			return next(c)
		}
	}
}

// GetAppContext returns the application context attached by AppContextMiddleware.
func GetAppContext(c echo.Context) app.AppContext {
	appCtx, ok := c.Get(appContextKey).(app.AppContext)
	if !ok {
		panic("shopapi: application context missing from request")
	}
	return appCtx
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func paged(c echo.Context, page *catalog.Page) error {
	return c.JSON(http.StatusOK, page)
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, Message{Message: msg})
}

func notFoundPayload(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, NotFoundPayload{Found: false, Message: msg})
}

func fail(c echo.Context, status int, code, msg string, details interface{}) error {
	return c.JSON(status, webserver.ErrorResponse{Error: code, Message: msg, Details: details})
}

// internalError logs err and answers with a body that carries no detail.
func internalError(c echo.Context, msg string, err error) error {
	zap.L().Error(msg,
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

// validationFailed answers 400 when err is caused by caller input. It
// reports false for every other error.
func validationFailed(c echo.Context, err error) (bool, error) {
	var verr *catalog.ValidationError
	if errors.As(err, &verr) {
		return true, fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid commodity", verr.Fields)
	}
	var uerr *catalog.UnknownCategoryError
	if errors.As(err, &uerr) {
		return true, fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown category",
			map[string]interface{}{"categories": uerr.IDs})
	}
	return false, nil
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pagination(c echo.Context) catalog.Pagination {
	return GetAppContext(c).Catalog().Pagination(c.QueryParam("page"), c.QueryParam("limit"))
}
