package echoapi

import (
	"net/http"
	"strconv"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/auth"
	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/core/student"
)

type authApi struct {
	auth       *auth.Authenticator
	sessions   *session.Store
	studentSvc *student.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerAuthAPI(g *echo.Group, opts *Options) {
	api := authApi{
		auth:       opts.Auth,
		sessions:   opts.SessionStore,
		studentSvc: opts.StudentSvc,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	ag := g.Group("/auth")
	ag.POST("/admin/login", api.adminLogin)
	ag.POST("/student/login", api.studentLogin)
	ag.POST("/logout", api.logout)
	ag.POST("/admin/logout", api.adminLogout)
	ag.POST("/student/logout", api.studentLogout)
	ag.GET("/session", api.currentSession)
}

// Middlewares

// adminRequiredMiddleware gates a route on a live admin session, checked
// against the store on every request so that lazy expiry applies.
func adminRequiredMiddleware(sessions *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !sessions.IsAdminActive(ctx.Request().Context()) {
				return errUnauthorized
			}
			return next(ctx)
		}
	}
}

// adminOrSelfMiddleware admits the admin, or a logged-in student whose own
// record is being addressed by the :id param.
func adminOrSelfMiddleware(sessions *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			rctx := ctx.Request().Context()
			if sessions.IsAdminActive(rctx) {
				return next(ctx)
			}
			if sess, err := sessions.LoadStudent(rctx); err == nil && sess != nil {
				if ctx.Param("id") == strconv.Itoa(sess.StudentID) {
					return next(ctx)
				}
				return errHttpForbidden
			}
			return errUnauthorized
		}
	}
}

// Handlers

func (api *authApi) adminLogin(ctx echo.Context) error {
	var data AdminLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	name, token, err := api.auth.AuthenticateAdmin(data.Username, data.Password)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return errors.Wrap(err, "authenticating admin")
	}

	sess := session.Admin{
		IsAuthenticated: true,
		Username:        data.Username,
		Name:            name,
		LoginTime:       time.Now().UTC(),
		Token:           token,
	}
	if err := api.sessions.SetAdmin(ctx.Request().Context(), sess); err != nil {
		return errors.Wrap(err, "storing admin session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *authApi) studentLogin(ctx echo.Context) error {
	var data StudentLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	roster, err := api.studentSvc.LoadOrSeed(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading roster")
	}

	stu, token, err := api.auth.AuthenticateStudent(data.StudentID, data.DateOfBirth, roster)
	if err != nil {
		switch err {
		case auth.ErrStudentNotFound, auth.ErrAccountNotConfigured, auth.ErrInvalidCredentials:
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return errors.Wrap(err, "authenticating student")
	}

	sess := session.Student{
		IsAuthenticated: true,
		StudentID:       stu.ID,
		Name:            stu.Name,
		LoginTime:       time.Now().UTC(),
		Token:           token,
	}
	if err := api.sessions.SetStudent(ctx.Request().Context(), sess); err != nil {
		return errors.Wrap(err, "storing student session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *authApi) logout(ctx echo.Context) error {
	if err := api.sessions.ClearAll(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "clearing sessions")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) adminLogout(ctx echo.Context) error {
	if err := api.sessions.ClearAdmin(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "clearing admin session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) studentLogout(ctx echo.Context) error {
	if err := api.sessions.ClearStudent(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "clearing student session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) currentSession(ctx echo.Context) error {
	usr := api.sessions.CurrentUser(ctx.Request().Context())
	if usr == nil {
		return errUnauthorized
	}
	return ctx.JSON(http.StatusOK, usr)
}

type (
	// AdminLoginRequest credentials are matched exactly; no trimming or
	// case folding happens on the way in.
	AdminLoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	// StudentLoginRequest carries the id as the raw string typed in; it is
	// compared against stringified record ids, never parsed.
	StudentLoginRequest struct {
		StudentID   string `json:"studentId" validate:"required"`
		DateOfBirth string `json:"dateOfBirth" validate:"required"`
	}
)

func (lr *AdminLoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(lr)
}

func (lr *StudentLoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(lr)
}
