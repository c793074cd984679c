package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/identity"
)

type sessionApi struct {
	server   *Server
	provider identity.Provider
	validate *validator.Validate
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := sessionApi{
		server:   s,
		provider: s.deps.Identity,
		validate: s.deps.Validate,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/quick-login", api.quickLogin)

	// authed endpoints
	ag.POST("/token-refresh", api.refreshToken, jwt)
	ag.GET("/me", api.me, jwt)
}

// Handlers

func (api *sessionApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.provider.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	return api.respondToken(ctx, sess)
}

func (api *sessionApi) quickLogin(ctx echo.Context) error {
	var data QuickLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuickLoginRequest")
	}

	demo, ok := api.provider.(identity.DemoProvider)
	if !ok {
		return errDemoDisabled
	}
	sess, err := demo.QuickLogin(ctx.Request().Context(), data.Admin)
	if err != nil {
		return errors.Wrap(err, "logging in demo user")
	}
	return api.respondToken(ctx, sess)
}

func (api *sessionApi) respondToken(ctx echo.Context, sess identity.Session) error {
	token, err := api.server.IssueToken(sess)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Session: &sess})
}

func (api *sessionApi) refreshToken(ctx echo.Context) error {
	token, err := api.server.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *sessionApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	return ctx.JSON(http.StatusOK, claims.Session())
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	QuickLoginRequest struct {
		Admin bool `json:"admin"`
	}

	LoginResponse struct {
		Token   string            `json:"token"`
		Session *identity.Session `json:"session,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
