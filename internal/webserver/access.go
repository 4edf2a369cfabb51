package webserver

import (
	"strings"

	"github.com/infoabcd/Warehouse-Query-System/internal/auth"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const identityKey = "warehouse.identity"

var errNotAdmin = errors.New("token does not carry the admin role")

// IdentityFrom returns the admin identity attached to the request, if any.
func IdentityFrom(c echo.Context) (*auth.Identity, bool) {
	id, ok := c.Get(identityKey).(*auth.Identity)
	return id, ok && id != nil
}

// tokenExtractor reads the bearer token from the Authorization header and
// falls back to the auth cookie only when the header is absent.
func tokenExtractor(cookieName string) middleware.ValuesExtractor {
	return func(c echo.Context) ([]string, error) {
		if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
			const prefix = "Bearer "
			if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
				return []string{strings.TrimSpace(h[len(prefix):])}, nil
			}
			return nil, errors.New("malformed authorization header")
		}
		if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
			return []string{ck.Value}, nil
		}
		return nil, auth.ErrMissingToken
	}
}

// adminToken accepts only verified tokens whose role is administrator.
func adminToken(tokens *auth.TokenService) func(c echo.Context, raw string) (interface{}, error) {
	return func(c echo.Context, raw string) (interface{}, error) {
		claims, err := tokens.Verify(raw)
		if err != nil {
			return nil, err
		}
		id := claims.Identity()
		if !id.Admin {
			return nil, errNotAdmin
		}
		return id, nil
	}
}

func jwtConfig(tokens *auth.TokenService, cookieName string) echojwt.Config {
	return echojwt.Config{
		ContextKey:       identityKey,
		TokenLookupFuncs: []middleware.ValuesExtractor{tokenExtractor(cookieName)},
		ParseTokenFunc:   adminToken(tokens),
	}
}

// AdminGate lets a request through only with an admin token. Every other
// caller gets the same answer as an unknown route; the reason is logged.
func AdminGate(tokens *auth.TokenService, cookieName string) echo.MiddlewareFunc {
	cfg := jwtConfig(tokens, cookieName)
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		zap.L().Warn("admin access rejected",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("ip", c.RealIP()),
			zap.String("reason", rejectReason(err)))
		return echo.ErrNotFound
	}
	return echojwt.WithConfig(cfg)
}

// BestEffortIdentity attaches an admin identity when the request carries
// one and otherwise continues anonymously. It never blocks.
func BestEffortIdentity(tokens *auth.TokenService, cookieName string) echo.MiddlewareFunc {
	cfg := jwtConfig(tokens, cookieName)
	cfg.ContinueOnIgnoredError = true
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		c.Set(identityKey, nil)
		return nil
	}
	return echojwt.WithConfig(cfg)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "no token"
	case errors.Is(err, errNotAdmin):
		return "not admin"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid token"
	default:
		return err.Error()
	}
}
