package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/content"
	"github.com/trezcool/schoolportal/core/identity"
)

type ServerDeps struct {
	Conf       *core.Config
	Logger     core.Logger
	Store      *content.Store
	Identity   identity.Provider
	Validate   *validator.Validate
	Translator ut.Translator
}

type Server struct {
	deps      ServerDeps
	app       *echo.Echo
	jwtConfig middleware.JWTConfig

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		shutdown: make(chan struct{}),
	}
	s.jwtConfig = newJWTConfig(deps.Conf.SecretKey)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.Server.DisableRequestLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.jwtConfig)
	admin := adminMiddleware()

	registerSessionAPI(v1, jwt, s)
	registerNewsAPI(v1, jwt, admin, s)
	registerEventAPI(v1, jwt, admin, s)
	registerPollAPI(v1, jwt, admin, s)
	registerAnnouncementAPI(v1, jwt, admin, s)
	registerDashboardAPI(v1, jwt, admin, s)
}

// Start serves until Shutdown or Close is called; it then returns nil.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         s.deps.Conf.Server.Address,
		ReadTimeout:  s.deps.Conf.Server.ReadTimeout,
		WriteTimeout: s.deps.Conf.Server.WriteTimeout,
	}
	s.deps.Logger.Info(fmt.Sprintf("API listening on %s", srv.Addr))
	if err := s.app.StartServer(srv); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "serving API")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

// ShutdownSignal is closed when a handler hits a core.shutdown error.
func (s *Server) ShutdownSignal() <-chan struct{} {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, fmt.Sprintf("Welcome to %s API!", s.deps.Conf.AppName))
}
