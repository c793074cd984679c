package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/content"
)

type eventApi struct {
	store    *content.Store
	validate *validator.Validate
}

func registerEventAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, s *Server) {
	api := eventApi{
		store:    s.deps.Store,
		validate: s.deps.Validate,
	}

	pg := g.Group("/events", jwt)
	pg.GET("", api.upcoming)
	pg.GET("/subjects", api.subjects)

	ag := g.Group("/admin/events", jwt, admin)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PATCH("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

// upcoming lists the active events.
func (api *eventApi) upcoming(ctx echo.Context) error {
	var q EventQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to EventQuery")
	}
	f := q.toFilter()
	f.Status = ""
	return ctx.JSON(http.StatusOK, content.FilterEvents(api.store.ActiveEvents(), f))
}

func (api *eventApi) subjects(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, content.OlympiadSubjects(api.store.ActiveEvents()))
}

func (api *eventApi) query(ctx echo.Context) error {
	var q EventQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to EventQuery")
	}
	return ctx.JSON(http.StatusOK, content.FilterEvents(api.store.Events(), q.toFilter()))
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	event, ok := api.store.GetEvent(id)
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, event)
}

func (api *eventApi) create(ctx echo.Context) error {
	var data EventRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EventRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	event := api.store.AddEvent(content.NewEvent{
		Title:       data.Title,
		Kind:        data.kind,
		Date:        data.Date,
		Time:        data.Time,
		Location:    data.Location,
		Description: data.Description,
		Image:       data.Image,
		Status:      data.Status,
	})
	return ctx.JSON(http.StatusCreated, event)
}

func (api *eventApi) update(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	event, ok := api.store.GetEvent(id)
	if !ok {
		return errHttpNotFound
	}

	var data EventPatchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EventPatchRequest")
	}
	if err := data.Validate(api.validate, event); err != nil {
		return err
	}

	event, ok = api.store.UpdateEvent(id, content.EventPatch{
		Title:       data.Title,
		Kind:        data.kind,
		Date:        data.Date,
		Time:        data.Time,
		Location:    data.Location,
		Description: data.Description,
		Image:       data.Image,
		Status:      data.Status,
	})
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, event)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	if id, err := bindID(ctx); err == nil {
		api.store.DeleteEvent(id)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	EventQuery struct {
		Search  string `query:"search"`
		Type    string `query:"type"`
		Subject string `query:"subject"`
		Status  string `query:"status"`
	}

	EventRequest struct {
		Title       string              `json:"title" validate:"notblank"`
		Type        content.EventType   `json:"type" validate:"required,oneof=school olympiad"`
		Subject     string              `json:"subject"`
		Date        string              `json:"date" validate:"required,date"`
		Time        string              `json:"time" validate:"notblank"`
		Location    string              `json:"location" validate:"notblank"`
		Description string              `json:"description" validate:"notblank"`
		Image       string              `json:"image" validate:"omitempty,url|datauri"`
		Status      content.EventStatus `json:"status" validate:"required,oneof=active completed cancelled"`

		kind content.EventKind
	}

	EventPatchRequest struct {
		Title       *string              `json:"title" validate:"omitempty,notblank"`
		Type        *content.EventType   `json:"type" validate:"omitempty,oneof=school olympiad"`
		Subject     *string              `json:"subject"`
		Date        *string              `json:"date" validate:"omitempty,date"`
		Time        *string              `json:"time" validate:"omitempty,notblank"`
		Location    *string              `json:"location" validate:"omitempty,notblank"`
		Description *string              `json:"description" validate:"omitempty,notblank"`
		Image       *string              `json:"image" validate:"omitempty,url|datauri"`
		Status      *content.EventStatus `json:"status" validate:"omitempty,oneof=active completed cancelled"`

		kind content.EventKind
	}
)

func (q EventQuery) toFilter() content.EventFilter {
	return content.EventFilter{
		Search:  core.CleanString(q.Search),
		Type:    content.EventType(core.CleanString(q.Type, true /* lower */)),
		Subject: core.CleanString(q.Subject),
		Status:  content.EventStatus(core.CleanString(q.Status, true /* lower */)),
	}
}

func (er *EventRequest) Validate(validate *validator.Validate) error {
	er.Title = core.CleanString(er.Title)
	er.Date = core.CleanString(er.Date)
	er.Image = core.CleanString(er.Image)
	if err := validate.Struct(er); err != nil {
		return err
	}

	kind, err := eventKind(er.Type, er.Subject, er.Subject)
	if err != nil {
		return err
	}
	er.kind = kind
	return nil
}

// Validate checks the patch against the event it applies to.
// The kind is rebuilt whenever the type or the subject changes.
func (er *EventPatchRequest) Validate(validate *validator.Validate, current content.Event) error {
	cleanPtr(er.Title, er.Date, er.Image)
	if err := validate.Struct(er); err != nil {
		return err
	}
	if er.Type == nil && er.Subject == nil {
		return nil
	}

	typ := current.Type()
	if er.Type != nil {
		typ = *er.Type
	}
	subject, _ := current.Subject()
	var given string
	if er.Subject != nil {
		subject = *er.Subject
		given = subject
	}
	kind, err := eventKind(typ, subject, given)
	if err != nil {
		return err
	}
	er.kind = kind
	return nil
}

// eventKind builds the kind of an event. given is the subject sent by the client,
// which a school event must leave blank.
func eventKind(typ content.EventType, subject, given string) (content.EventKind, error) {
	if typ == content.EventSchool && core.CleanString(given) != "" {
		return nil, errSchoolSubject
	}
	kind, err := content.KindOf(typ, subject)
	switch errors.Cause(err) {
	case nil:
		return kind, nil
	case content.ErrOlympiadSubject:
		return nil, errors.Wrapf(err, "building %s event", typ)
	default:
		return nil, core.NewFieldError("type", "unknown event type")
	}
}
