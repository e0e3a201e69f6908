package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/campus_session/internal/idp"
	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/util"
)

// ErrorHandler answers every failure with {"error": "..."}, the body shape
// the session client extracts messages from.
func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if isUnauthorizedTokenError(err) {
			writeError(c, log, http.StatusUnauthorized, err.Error())
			return
		}

		var respErr util.ResponseError
		if errors.As(err, &respErr) {
			writeError(c, log, respErr.Status, respErr.Msg)
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Code == http.StatusInternalServerError {
				log.Errorw("HTTP error", "error", err, "uri", c.Request().RequestURI)
			}
			writeError(c, log, he.Code, fmt.Sprint(he.Message))
			return
		}

		log.Errorw("unhandled error", "error", err, "uri", c.Request().RequestURI)
		writeError(c, log, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(c echo.Context, log *zap.SugaredLogger, status int, msg string) {
	if err := c.JSON(status, models.ErrorResponse{Error: msg}); err != nil {
		log.Errorw("failed to write json response", "error", err)
	}
}

func isUnauthorizedTokenError(err error) bool {
	return errors.Is(err, idp.ErrTokenInvalid) ||
		errors.Is(err, idp.ErrTokenMalformed) ||
		errors.Is(err, idp.ErrRefreshTokenNotFoundOrUsed)
}
