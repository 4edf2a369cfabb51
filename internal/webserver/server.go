package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/infoabcd/Warehouse-Query-System/config"
	"github.com/infoabcd/Warehouse-Query-System/internal/auth"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Access is the requirement a route declares when it is registered.
type Access int

const (
	// Public routes run without looking at credentials.
	Public Access = iota
	// Identified routes attach an admin identity when one is presented and
	// otherwise proceed anonymously.
	Identified
	// AdminOnly routes answer every caller without an admin identity exactly
	// like an unknown route.
	AdminOnly
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Identified:
		return "identified"
	case AdminOnly:
		return "admin"
	default:
		return fmt.Sprintf("access(%d)", int(a))
	}
}

// Server wraps echo with per-route access control.
type Server struct {
	root     *echo.Echo
	cfg      config.WebConfig
	gate     echo.MiddlewareFunc
	identify echo.MiddlewareFunc
}

// NewServer builds the echo instance with the shared middleware stack.
func NewServer(cfg config.WebConfig, tokens *auth.TokenService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = &jsonSerializer{}
	e.Validator = &structValidator{validate: validator.New()}
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	if cfg.Metrics {
		e.Use(echoprometheus.NewMiddleware("warehouse"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	return &Server{
		root:     e,
		cfg:      cfg,
		gate:     AdminGate(tokens, cfg.CookieName),
		identify: BestEffortIdentity(tokens, cfg.CookieName),
	}
}

// Echo exposes the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.root
}

// Use adds middleware that runs for every route.
func (s *Server) Use(m ...echo.MiddlewareFunc) {
	s.root.Use(m...)
}

func (s *Server) GET(path string, access Access, h echo.HandlerFunc) {
	s.add(http.MethodGet, path, access, h)
}

func (s *Server) POST(path string, access Access, h echo.HandlerFunc) {
	s.add(http.MethodPost, path, access, h)
}

func (s *Server) PUT(path string, access Access, h echo.HandlerFunc) {
	s.add(http.MethodPut, path, access, h)
}

func (s *Server) DELETE(path string, access Access, h echo.HandlerFunc) {
	s.add(http.MethodDelete, path, access, h)
}

func (s *Server) add(method, path string, access Access, h echo.HandlerFunc) {
	var mw []echo.MiddlewareFunc
	switch access {
	case Identified:
		mw = append(mw, s.identify)
	case AdminOnly:
		mw = append(mw, s.gate)
	case Public:
	default:
		panic(fmt.Sprintf("webserver: route %s %s has unknown %s", method, path, access))
	}
	s.root.Add(method, path, h, mw...)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.root.ServeHTTP(w, r)
}

// Start listens on the configured address and blocks until the server
// stops. A graceful Shutdown makes it return nil.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	zap.S().Infof("Prepare to start the web server %s", addr)
	if err := s.root.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits up to timeout for in-flight ones.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.root.Shutdown(ctx)
}

type jsonSerializer struct{}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsonAPI.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := jsonAPI.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body").SetInternal(err)
	}
	return nil
}

type structValidator struct {
	validate *validator.Validate
}

func (v *structValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			zap.L().Info("request", fields...)
			return nil
		},
	})
}
