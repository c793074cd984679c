package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/content"
)

type announcementApi struct {
	store    *content.Store
	validate *validator.Validate
}

func registerAnnouncementAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, s *Server) {
	api := announcementApi{
		store:    s.deps.Store,
		validate: s.deps.Validate,
	}

	pg := g.Group("/announcements", jwt)
	pg.GET("", api.inbox)
	pg.POST("/read-all", api.markAllRead)
	pg.POST("/:id/read", api.markRead)
	pg.DELETE("/:id/read", api.markUnread)

	ag := g.Group("/admin/announcements", jwt, admin)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PATCH("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

// inbox lists the announcements with the caller's read flags.
func (api *announcementApi) inbox(ctx echo.Context) error {
	var q AnnouncementQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to AnnouncementQuery")
	}
	client, err := clientState(ctx, api.store)
	if err != nil {
		return err
	}

	all := api.store.Announcements()
	items := content.FilterAnnouncements(all, q.toFilter(), client)
	resp := Inbox{
		Items:  make([]InboxItem, len(items)),
		Unread: client.UnreadCount(all),
	}
	for i, a := range items {
		resp.Items[i] = InboxItem{Announcement: a, Read: client.IsRead(a.ID)}
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *announcementApi) markRead(ctx echo.Context) error {
	return api.setRead(ctx, true)
}

func (api *announcementApi) markUnread(ctx echo.Context) error {
	return api.setRead(ctx, false)
}

func (api *announcementApi) setRead(ctx echo.Context, read bool) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	if _, ok := api.store.GetAnnouncement(id); !ok {
		return errHttpNotFound
	}
	client, err := clientState(ctx, api.store)
	if err != nil {
		return err
	}
	if read {
		client.MarkRead(id)
	} else {
		client.MarkUnread(id)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *announcementApi) markAllRead(ctx echo.Context) error {
	client, err := clientState(ctx, api.store)
	if err != nil {
		return err
	}
	all := api.store.Announcements()
	ids := make([]int, len(all))
	for i, a := range all {
		ids[i] = a.ID
	}
	client.MarkAllRead(ids...)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *announcementApi) query(ctx echo.Context) error {
	var q AnnouncementQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to AnnouncementQuery")
	}
	f := q.toFilter()
	f.UnreadOnly = false
	return ctx.JSON(http.StatusOK, content.FilterAnnouncements(api.store.Announcements(), f, nil))
}

func (api *announcementApi) retrieve(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	a, ok := api.store.GetAnnouncement(id)
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *announcementApi) create(ctx echo.Context) error {
	var data AnnouncementRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnnouncementRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	a := api.store.AddAnnouncement(content.NewAnnouncement{
		Title:   data.Title,
		Content: data.Content,
		Type:    data.Type,
		From:    data.From,
	})
	return ctx.JSON(http.StatusCreated, a)
}

func (api *announcementApi) update(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	var data AnnouncementPatchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnnouncementPatchRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, ok := api.store.UpdateAnnouncement(id, content.AnnouncementPatch{
		Title:   data.Title,
		Content: data.Content,
		Type:    data.Type,
		From:    data.From,
	})
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	if id, err := bindID(ctx); err == nil {
		api.store.DeleteAnnouncement(id)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	AnnouncementQuery struct {
		Search string `query:"search"`
		Type   string `query:"type"`
		Unread bool   `query:"unread"`
	}

	InboxItem struct {
		content.Announcement
		Read bool `json:"read"`
	}

	Inbox struct {
		Items  []InboxItem `json:"items"`
		Unread int         `json:"unread"`
	}

	AnnouncementRequest struct {
		Title   string                   `json:"title" validate:"notblank"`
		Content string                   `json:"content" validate:"notblank"`
		Type    content.AnnouncementType `json:"type" validate:"required,oneof=info warning event"`
		From    string                   `json:"from" validate:"notblank"`
	}

	AnnouncementPatchRequest struct {
		Title   *string                   `json:"title" validate:"omitempty,notblank"`
		Content *string                   `json:"content" validate:"omitempty,notblank"`
		Type    *content.AnnouncementType `json:"type" validate:"omitempty,oneof=info warning event"`
		From    *string                   `json:"from" validate:"omitempty,notblank"`
	}
)

func (q AnnouncementQuery) toFilter() content.AnnouncementFilter {
	return content.AnnouncementFilter{
		Search:     core.CleanString(q.Search),
		Type:       content.AnnouncementType(core.CleanString(q.Type, true /* lower */)),
		UnreadOnly: q.Unread,
	}
}

func (ar *AnnouncementRequest) Validate(validate *validator.Validate) error {
	ar.Title = core.CleanString(ar.Title)
	ar.From = core.CleanString(ar.From)
	return validate.Struct(ar)
}

func (ar *AnnouncementPatchRequest) Validate(validate *validator.Validate) error {
	cleanPtr(ar.Title, ar.From)
	return validate.Struct(ar)
}
