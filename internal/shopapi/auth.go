package shopapi

import (
	"net/http"
	"time"

	"github.com/infoabcd/Warehouse-Query-System/internal/auth"
	"github.com/infoabcd/Warehouse-Query-System/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type loginPayload struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

// registerAuthRoutes registers login endpoints. The /admin aliases are the
// paths the admin panel posts to.
func registerAuthRoutes(srv *webserver.Server) {
	for _, path := range []string{"/login", "/admin/login"} {
		srv.POST(path, webserver.Public, login)
		srv.GET(path, webserver.Identified, checkLogin)
	}
	srv.POST("/logout", webserver.Public, logout)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}

	appCtx := GetAppContext(c)
	id, err := appCtx.Authenticator().Authenticate(c.Request().Context(), payload.Username, payload.Password)
	if errors.Is(err, auth.ErrBadCredentials) {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Incorrect username or password, please try again", nil)
	}
	if err != nil {
		return internalError(c, "authenticate", err)
	}

	token, err := appCtx.Tokens().Issue(*id)
	if err != nil {
		return internalError(c, "issue token", err)
	}

	web := appCtx.Config().Web
	c.SetCookie(&http.Cookie{
		Name:     web.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(web.CookieMaxAge),
		MaxAge:   int(web.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   web.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return message(c, http.StatusOK, "Login successful")
}

func checkLogin(c echo.Context) error {
	if _, ok := webserver.IdentityFrom(c); !ok {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Not logged in", nil)
	}
	return message(c, http.StatusOK, "Welcome back")
}

func logout(c echo.Context) error {
	web := GetAppContext(c).Config().Web
	c.SetCookie(&http.Cookie{
		Name:     web.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   web.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return message(c, http.StatusOK, "Logged out")
}
