package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/campus_session/internal/idp"
	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/util"
)

const UsernameContextKey = "username"

type Controller struct {
	zapLogger *zap.SugaredLogger
	tokens    *idp.TokenService
	directory *idp.Directory
}

func NewController(logger *zap.SugaredLogger, tokens *idp.TokenService, directory *idp.Directory) *Controller {
	return &Controller{
		zapLogger: logger,
		tokens:    tokens,
		directory: directory,
	}
}

// (GET /mobile/ping).
func (c *Controller) CheckServer(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, "ok")
}

// (POST /mobile/login).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewResponseError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return util.NewResponseError(http.StatusBadRequest, "%s", err.Error())
	}

	if err := c.directory.Authenticate(req.Username, req.Password); err != nil {
		c.zapLogger.Infow("login rejected", "username", req.Username)
		return util.NewResponseError(http.StatusUnauthorized, "%s", err.Error())
	}

	pair, err := c.tokens.IssuePair(ctx.Request().Context(), req.Username)
	if err != nil {
		return err
	}

	c.zapLogger.Infow("login accepted", "username", req.Username)
	return ctx.JSON(http.StatusOK, models.LoginResponse{AccessToken: pair.Access, RefreshToken: pair.Refresh})
}

// (POST /mobile/refresh).
func (c *Controller) Refresh(ctx echo.Context) error {
	var req models.RefreshRequest
	if err := ctx.Bind(&req); err != nil || req.RefreshToken == "" {
		return util.NewResponseError(http.StatusBadRequest, "refresh_token is required")
	}

	pair, err := c.tokens.Rotate(ctx.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, models.RefreshResponse{AccessToken: pair.Access, RefreshToken: pair.Refresh})
}

// (POST /mobile/logout).
func (c *Controller) Logout(ctx echo.Context) error {
	var req models.LogoutRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewResponseError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.tokens.Revoke(ctx.Request().Context(), req.RefreshToken); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (POST /mobile/data-student-profile).
func (c *Controller) Profile(ctx echo.Context) error {
	rec, err := c.record(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec.Profile)
}

// (GET /mobile/active-course-list).
func (c *Controller) Courses(ctx echo.Context) error {
	rec, err := c.record(ctx)
	if err != nil {
		return err
	}

	skip := queryInt(ctx, "skip", 0)
	take := queryInt(ctx, "take", len(rec.Courses))

	page := []models.Course{}
	if skip < len(rec.Courses) {
		end := min(skip+take, len(rec.Courses))
		page = rec.Courses[skip:end]
	}

	return ctx.JSON(http.StatusOK, models.CourseList{Count: len(rec.Courses), Data: page})
}

// (GET /mobile/course-grades-list).
func (c *Controller) Grades(ctx echo.Context) error {
	rec, err := c.record(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, nonNil(rec.Grades))
}

// (GET /mobile/course-attendance-list).
func (c *Controller) Attendance(ctx echo.Context) error {
	rec, err := c.record(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, nonNil(rec.Attendance))
}

// (POST /mobile/messages-list).
func (c *Controller) Messages(ctx echo.Context) error {
	rec, err := c.record(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, nonNil(rec.Messages))
}

func (c *Controller) record(ctx echo.Context) (idp.Record, error) {
	username, _ := ctx.Get(UsernameContextKey).(string)
	if username == "" {
		return idp.Record{}, util.NewResponseError(http.StatusUnauthorized, "missing identity")
	}

	rec, err := c.directory.Lookup(username)
	if errors.Is(err, idp.ErrUserNotFound) {
		return idp.Record{}, util.NewResponseError(http.StatusNotFound, "student %s not found", username)
	}
	return rec, err
}

func queryInt(ctx echo.Context, name string, def int) int {
	v := ctx.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
