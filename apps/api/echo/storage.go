package echoapi

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/student"
)

type dataApi struct {
	svc *student.Service
}

func registerDataAPI(g *echo.Group, admin echo.MiddlewareFunc, opts *Options) {
	api := dataApi{svc: opts.StudentSvc}

	dg := g.Group("/data", admin)
	dg.GET("/info", api.info)
	dg.GET("/export", api.export)
	dg.POST("/import", api.importData)
	dg.POST("/seed", api.seed)
	dg.POST("/clear", api.clear)
}

// Handlers

func (api *dataApi) info(ctx echo.Context) error {
	info, err := api.svc.Info(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting roster info")
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *dataApi) export(ctx echo.Context) error {
	roster, err := api.svc.Load(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading roster")
	}

	data, err := student.ExportSnapshot(roster)
	if err != nil {
		if errors.Cause(err) == student.ErrNoData {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return errors.Wrap(err, "rendering snapshot")
	}

	filename := student.ExportFilename(time.Now())
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, data)
}

func (api *dataApi) importData(ctx echo.Context) error {
	data, err := ioutil.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading import body")
	}

	roster, err := api.svc.ImportSnapshot(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == student.ErrImportFormat {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return errors.Wrap(err, "importing snapshot")
	}
	return ctx.JSON(http.StatusOK, ImportResponse{Count: len(roster)})
}

func (api *dataApi) seed(ctx echo.Context) error {
	roster, err := api.svc.Seed(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "seeding roster")
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *dataApi) clear(ctx echo.Context) error {
	if err := api.svc.Clear(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "clearing roster")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type ImportResponse struct {
	Count int `json:"count"`
}
