package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/content"
)

type pollApi struct {
	store    *content.Store
	validate *validator.Validate
}

func registerPollAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, s *Server) {
	api := pollApi{
		store:    s.deps.Store,
		validate: s.deps.Validate,
	}

	pg := g.Group("/polls", jwt)
	pg.GET("", api.board)
	pg.POST("/:id/vote", api.vote)

	ag := g.Group("/admin/polls", jwt, admin)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PATCH("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

func (api *pollApi) board(ctx echo.Context) error {
	client, err := clientState(ctx, api.store)
	if err != nil {
		return err
	}
	active, closed := content.PartitionPolls(api.store.Polls())
	return ctx.JSON(http.StatusOK, PollBoard{
		Active: active,
		Closed: closed,
		Voted:  client.VotedPolls(),
	})
}

func (api *pollApi) vote(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	var data VoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VoteRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	client, err := clientState(ctx, api.store)
	if err != nil {
		return err
	}
	poll, counted := api.store.VoteOnce(client, id, *data.Option)
	if poll.ID == 0 {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, VoteResponse{Poll: poll, Counted: counted})
}

func (api *pollApi) query(ctx echo.Context) error {
	var q PollQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to PollQuery")
	}
	return ctx.JSON(http.StatusOK, content.FilterPolls(api.store.Polls(), content.PollFilter{
		Search: core.CleanString(q.Search),
		Status: content.PollStatus(core.CleanString(q.Status, true /* lower */)),
	}))
}

func (api *pollApi) retrieve(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	poll, ok := api.store.GetPoll(id)
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, poll)
}

func (api *pollApi) create(ctx echo.Context) error {
	var data PollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PollRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	poll := api.store.AddPoll(content.NewPoll{
		Title:       data.Title,
		Description: data.Description,
		Options:     data.options(),
		Status:      data.Status,
		Deadline:    data.Deadline,
	})
	return ctx.JSON(http.StatusCreated, poll)
}

func (api *pollApi) update(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	var data PollPatchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PollPatchRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	patch := content.PollPatch{
		Title:       data.Title,
		Description: data.Description,
		Status:      data.Status,
		Deadline:    data.Deadline,
	}
	if data.Options != nil {
		patch.Options = pollOptions(data.Options)
	}
	poll, ok := api.store.UpdatePoll(id, patch)
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, poll)
}

func (api *pollApi) destroy(ctx echo.Context) error {
	if id, err := bindID(ctx); err == nil {
		api.store.DeletePoll(id)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	PollQuery struct {
		Search string `query:"search"`
		Status string `query:"status"`
	}

	PollBoard struct {
		Active []content.Poll `json:"active"`
		Closed []content.Poll `json:"closed"`
		Voted  []int          `json:"voted"`
	}

	VoteRequest struct {
		Option *int `json:"option" validate:"required,min=0"`
	}

	VoteResponse struct {
		Poll    content.Poll `json:"poll"`
		Counted bool         `json:"counted"`
	}

	PollOptionRequest struct {
		Text  string `json:"text"`
		Votes int    `json:"votes" validate:"min=0"`
	}

	PollRequest struct {
		Title       string              `json:"title" validate:"notblank"`
		Description string              `json:"description"`
		Options     []PollOptionRequest `json:"options" validate:"min=2,dive"`
		Status      content.PollStatus  `json:"status" validate:"required,oneof=active closed"`
		Deadline    string              `json:"deadline" validate:"required,date"`
	}

	PollPatchRequest struct {
		Title       *string             `json:"title" validate:"omitempty,notblank"`
		Description *string             `json:"description"`
		Options     []PollOptionRequest `json:"options" validate:"omitempty,min=2,dive"`
		Status      *content.PollStatus `json:"status" validate:"omitempty,oneof=active closed"`
		Deadline    *string             `json:"deadline" validate:"omitempty,date"`
	}
)

func (pr *PollRequest) Validate(validate *validator.Validate) error {
	pr.Title = core.CleanString(pr.Title)
	pr.Description = core.CleanString(pr.Description)
	pr.Deadline = core.CleanString(pr.Deadline)
	pr.Options = cleanOptions(pr.Options)
	return validate.Struct(pr)
}

func (pr *PollRequest) options() []content.PollOption {
	return pollOptions(pr.Options)
}

func (pr *PollPatchRequest) Validate(validate *validator.Validate) error {
	cleanPtr(pr.Title, pr.Description, pr.Deadline)
	if pr.Options != nil {
		pr.Options = cleanOptions(pr.Options)
		if len(pr.Options) < 2 {
			return core.NewFieldError("options", "a poll needs at least 2 options")
		}
	}
	return validate.Struct(pr)
}

// cleanOptions trims the option texts and drops the blank ones.
func cleanOptions(opts []PollOptionRequest) []PollOptionRequest {
	out := make([]PollOptionRequest, 0, len(opts))
	for _, opt := range opts {
		if opt.Text = core.CleanString(opt.Text); opt.Text != "" {
			out = append(out, opt)
		}
	}
	return out
}

func pollOptions(opts []PollOptionRequest) []content.PollOption {
	out := make([]content.PollOption, len(opts))
	for i, opt := range opts {
		out[i] = content.PollOption{Text: opt.Text, Votes: opt.Votes}
	}
	return out
}
