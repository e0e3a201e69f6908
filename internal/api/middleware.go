package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rryowa/campus_session/internal/controller"
	"github.com/rryowa/campus_session/internal/idp"
	"github.com/rryowa/campus_session/internal/models"
)

// BearerAuthMiddleware validates the access token in the Authorization header
// and stores its username in the Echo context.
func BearerAuthMiddleware(tokens *idp.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(models.AuthorizationHeader)

			token, ok := strings.CutPrefix(header, models.BearerPrefix)
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "bearer token is missing")
			}

			username, err := tokens.ValidateAccessToken(token)
			if err != nil {
				return err
			}

			c.Set(controller.UsernameContextKey, username)

			return next(c)
		}
	}
}

func GetLoggerMiddlewareConfig(a *API) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,

		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", c.Request().Method,
				"uri", v.URI,
				"status", v.Status,
			}
			if id := c.Request().Header.Get(models.RequestIDHeader); id != "" {
				fields = append(fields, "request_id", id)
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				a.log.Errorw("Request", fields...)
			} else {
				a.log.Infow("Request", fields...)
			}
			return nil
		},
	}
}
