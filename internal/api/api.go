package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	middleware "github.com/oapi-codegen/echo-middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rryowa/campus_session/internal/controller"
	"github.com/rryowa/campus_session/internal/idp"
	"github.com/rryowa/campus_session/internal/util"
)

const (
	shutdownTimeout = 5 * time.Second
)

// API is the development identity provider: the /mobile endpoints the
// session client talks to, backed by an in-process directory.
type API struct {
	server          *echo.Echo
	controller      *controller.Controller
	tokens          *idp.TokenService
	gatherer        prometheus.Gatherer
	log             *zap.SugaredLogger
	gracefulTimeout time.Duration
}

func NewAPI(
	c *controller.Controller,
	tokens *idp.TokenService,
	gatherer prometheus.Gatherer,
	l *zap.SugaredLogger,
	sc *util.ServerConfig,
) *API {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.Addr = sc.ServerAddr
	e.Server.WriteTimeout = sc.WriteTimeout
	e.Server.ReadTimeout = sc.ReadTimeout
	e.Server.IdleTimeout = sc.IdleTimeout
	e.HTTPErrorHandler = ErrorHandler(l)

	return &API{
		server:          e,
		controller:      c,
		tokens:          tokens,
		gatherer:        gatherer,
		log:             l,
		gracefulTimeout: sc.GracefulTimeout,
	}
}

// RegisterRoutes wires middleware and handlers. Run calls it; tests call it
// directly and serve Handler through httptest.
func (a *API) RegisterRoutes() error {
	swagger, err := controller.GetSwagger()
	if err != nil {
		return fmt.Errorf("failed to load OpenAPI specification: %w", err)
	}
	swagger.Servers = nil

	a.server.Use(echomiddleware.RequestLoggerWithConfig(GetLoggerMiddlewareConfig(a)))

	if a.gatherer != nil {
		a.server.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{})))
	}

	g := a.server.Group("/mobile")
	g.Use(middleware.OapiRequestValidator(swagger))

	g.GET("/ping", a.controller.CheckServer)
	g.POST("/login", a.controller.Login)
	g.POST("/refresh", a.controller.Refresh)
	g.POST("/logout", a.controller.Logout)

	authed := g.Group("", BearerAuthMiddleware(a.tokens))
	authed.POST("/data-student-profile", a.controller.Profile)
	authed.GET("/active-course-list", a.controller.Courses)
	authed.GET("/course-grades-list", a.controller.Grades)
	authed.GET("/course-attendance-list", a.controller.Attendance)
	authed.POST("/messages-list", a.controller.Messages)

	return nil
}

func (a *API) Handler() http.Handler {
	return a.server
}

func (a *API) Run(ctxBackground context.Context) {
	ctx, stop := signal.NotifyContext(ctxBackground, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.RegisterRoutes(); err != nil {
		a.log.Fatalf("register routes: %v", err)
	}

	a.ListenGracefulShutdown(ctx)
}

func (a *API) ListenGracefulShutdown(ctx context.Context) {
	go func() {
		err := a.server.Start(a.server.Server.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()
	a.log.Infof("Listening on: %s", a.server.Server.Addr)

	<-ctx.Done()
	a.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if err != nil {
		a.log.Errorf("shutdown: %v", err)
	}

	longShutdown := make(chan struct{}, 1)

	go func() {
		time.Sleep(a.gracefulTimeout)
		longShutdown <- struct{}{}
	}()

	select {
	case <-shutdownCtx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			a.log.Info("server shutdown completed")
		} else {
			a.log.Errorf("server shutdown: %v", ctx.Err())
		}
	case <-longShutdown:
		a.log.Infof("finished")
	}
}
