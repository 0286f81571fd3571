package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/student"
)

type studentApi struct {
	svc        *student.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerStudentAPI(g *echo.Group, admin, adminOrSelf echo.MiddlewareFunc, opts *Options) {
	api := studentApi{
		svc:        opts.StudentSvc,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	sg := g.Group("/students")
	sg.GET("", api.query, admin)
	sg.POST("", api.create, admin)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve, adminOrSelf)
	dg.PUT("", api.update, admin)
	dg.DELETE("", api.destroy, admin)
	dg.POST("/scores", api.addScore, admin)
	dg.GET("/performance", api.performance, adminOrSelf)

	g.GET("/dashboard", api.dashboard, admin)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()

	roster, err := api.svc.LoadOrSeed(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading roster")
	}
	return ctx.JSON(http.StatusOK, student.Filter(roster, *filter))
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	stu, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, stu)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	stu, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	stu, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) addScore(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data AddScoreRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddScoreRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	stu, err := api.svc.AddScore(ctx.Request().Context(), id, data.Subject, *data.Score)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) performance(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	stu, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}

	if subject := ctx.QueryParam("subject"); subject != "" {
		scores, ok := stu.Performance[subject]
		if !ok {
			return errHttpNotFound
		}
		return ctx.JSON(http.StatusOK, SubjectPerformanceResponse{
			Subject: subject,
			Scores:  scores,
			Average: stu.SubjectAverage(subject),
		})
	}
	return ctx.JSON(http.StatusOK, PerformanceResponse{
		Performance: stu.Performance,
		Average:     stu.AverageScore(),
	})
}

func (api *studentApi) dashboard(ctx echo.Context) error {
	roster, err := api.svc.LoadOrSeed(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading roster")
	}
	return ctx.JSON(http.StatusOK, student.Summarize(roster))
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

type (
	AddScoreRequest struct {
		Subject string `json:"subject" validate:"required,subject"`
		Score   *int   `json:"score" validate:"required,min=0,max=100"`
	}

	PerformanceResponse struct {
		Performance student.Performance `json:"performance"`
		Average     float64             `json:"average"`
	}

	SubjectPerformanceResponse struct {
		Subject string  `json:"subject"`
		Scores  []int   `json:"scores"`
		Average float64 `json:"average"`
	}
)

func (sr *AddScoreRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}
