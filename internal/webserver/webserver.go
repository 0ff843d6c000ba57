package webserver

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/talkincode/toughwms/internal/app"
	"go.uber.org/zap"
)

// AppContextKey is the echo context key holding the application context
const AppContextKey = "app_ctx"

var server *WebServer

type WebServer struct {
	appCtx app.AppContext
	root   *echo.Echo
	api    *echo.Group
	pub    *echo.Group
}

// Init builds the echo server with logging, recovery, jwt auth for the
// api group and a public group for login.
func Init(appCtx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = NewJSONSerializer()
	e.Validator = NewCustomValidator()

	e.Use(middleware.Recover())
	e.Use(ZapLoggerMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})

	api := e.Group("/api/v1")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appCtx.Config().Web.Secret),
	}))

	pub := e.Group("/pub")

	server = &WebServer{appCtx: appCtx, root: e, api: api, pub: pub}
	return server
}

// Listen starts the http server
func Listen() error {
	cfg := server.appCtx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("admin api listening on %s", addr)
	return server.root.Start(addr)
}

// Shutdown stops the http server
func Shutdown() {
	if server != nil {
		_ = server.root.Close()
	}
}

// ApiGET registers an authenticated GET route under /api/v1
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

// ApiPOST registers an authenticated POST route under /api/v1
func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

// ApiPUT registers an authenticated PUT route under /api/v1
func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

// ApiDELETE registers an authenticated DELETE route under /api/v1
func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// PubPOST registers an unauthenticated POST route under /pub
func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}

// PubGET registers an unauthenticated GET route under /pub
func PubGET(path string, h echo.HandlerFunc) {
	server.pub.GET(path, h)
}

// CustomValidator adapts go-playground validator to echo
type CustomValidator struct {
	validate *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// ZapLoggerMiddleware logs requests through the global zap logger
func ZapLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				zap.L().Warn("request",
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.Error(v.Error))
			} else {
				zap.L().Debug("request",
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status))
			}
			return nil
		},
	})
}
