package webserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// NotFound is the body for unknown routes, disallowed methods and rejected
// admin requests alike.
var NotFound = ErrorResponse{Error: "NOT_FOUND", Message: "Page Not Found"}

// HTTPErrorHandler renders errors that escape handlers. Router misses,
// method mismatches and admin rejections all become the same 404.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := ErrorResponse{Error: "INTERNAL_ERROR", Message: "Internal server error"}
	if he, ok := err.(*echo.HTTPError); ok {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			status, body = http.StatusNotFound, NotFound
			c.Response().Header().Del(echo.HeaderAllow)
		case http.StatusInternalServerError:
		default:
			status = he.Code
			body = ErrorResponse{Error: errorCode(he.Code), Message: fmt.Sprint(he.Message)}
		}
		if he.Internal != nil && status >= http.StatusInternalServerError {
			err = he.Internal
		}
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		zap.L().Error("write error response", zap.Error(err))
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusRequestEntityTooLarge:
		return "TOO_LARGE"
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	default:
		return "ERROR"
	}
}
