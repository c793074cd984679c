package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/content"
)

type newsApi struct {
	store    *content.Store
	validate *validator.Validate
}

func registerNewsAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, s *Server) {
	api := newsApi{
		store:    s.deps.Store,
		validate: s.deps.Validate,
	}

	// portal
	pg := g.Group("/news", jwt)
	pg.GET("", api.feed)
	pg.GET("/:id", api.retrieve)

	// back-office
	ag := g.Group("/admin/news", jwt, admin)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieveAny)
	ag.PATCH("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

func (api *newsApi) feed(ctx echo.Context) error {
	var filter NewsQuery
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to NewsQuery")
	}
	news := api.store.PublishedNews()
	return ctx.JSON(http.StatusOK, content.FilterNews(news, filter.toFilter()))
}

func (api *newsApi) retrieve(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	item, ok := api.store.GetNews(id)
	if !ok || item.Status != content.NewsPublished {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *newsApi) query(ctx echo.Context) error {
	var filter NewsQuery
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to NewsQuery")
	}
	return ctx.JSON(http.StatusOK, content.FilterNews(api.store.News(), filter.toFilter()))
}

func (api *newsApi) retrieveAny(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	item, ok := api.store.GetNews(id)
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *newsApi) create(ctx echo.Context) error {
	var data NewsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewsRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	item := api.store.AddNews(content.NewNews{
		Category: data.Category,
		Title:    data.Title,
		Content:  data.Content,
		Image:    data.Image,
		Status:   data.Status,
	})
	return ctx.JSON(http.StatusCreated, item)
}

func (api *newsApi) update(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	var data NewsPatchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewsPatchRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	item, ok := api.store.UpdateNews(id, content.NewsPatch{
		Category: data.Category,
		Title:    data.Title,
		Content:  data.Content,
		Image:    data.Image,
		Status:   data.Status,
	})
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *newsApi) destroy(ctx echo.Context) error {
	if id, err := bindID(ctx); err == nil {
		api.store.DeleteNews(id)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	NewsQuery struct {
		Search   string `query:"search"`
		Status   string `query:"status"`
		Category string `query:"category"`
	}

	NewsRequest struct {
		Category string             `json:"category" validate:"notblank"`
		Title    string             `json:"title" validate:"notblank"`
		Content  string             `json:"content" validate:"notblank"`
		Image    string             `json:"image" validate:"omitempty,url|datauri"`
		Status   content.NewsStatus `json:"status" validate:"required,oneof=published draft"`
	}

	NewsPatchRequest struct {
		Category *string             `json:"category" validate:"omitempty,notblank"`
		Title    *string             `json:"title" validate:"omitempty,notblank"`
		Content  *string             `json:"content" validate:"omitempty,notblank"`
		Image    *string             `json:"image" validate:"omitempty,url|datauri"`
		Status   *content.NewsStatus `json:"status" validate:"omitempty,oneof=published draft"`
	}
)

func (q NewsQuery) toFilter() content.NewsFilter {
	return content.NewsFilter{
		Search:   core.CleanString(q.Search),
		Status:   content.NewsStatus(core.CleanString(q.Status, true /* lower */)),
		Category: core.CleanString(q.Category),
	}
}

func (nr *NewsRequest) Validate(validate *validator.Validate) error {
	nr.Category = core.CleanString(nr.Category)
	nr.Title = core.CleanString(nr.Title)
	nr.Image = core.CleanString(nr.Image)
	return validate.Struct(nr)
}

func (nr *NewsPatchRequest) Validate(validate *validator.Validate) error {
	cleanPtr(nr.Category, nr.Title, nr.Image)
	return validate.Struct(nr)
}

// cleanPtr trims the strings behind the non-nil pointers.
func cleanPtr(ss ...*string) {
	for _, s := range ss {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
}
