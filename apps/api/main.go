package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register the /debug/pprof handlers
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	echoapi "github.com/trezcool/schoolportal/apps/api/echo"
	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/content"
	identitysvc "github.com/trezcool/schoolportal/services/identity"
	logsvc "github.com/trezcool/schoolportal/services/logger"
	"github.com/trezcool/schoolportal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	z, err := logsvc.NewZap(conf.Debug)
	if err != nil {
		return errors.Wrap(err, "building zap logger")
	}
	logger := logsvc.NewRollbarLogger(z.Named("API"), conf)
	logger.Enable(!conf.Debug)
	defer logger.Sync()

	storeLogger := logsvc.NewRollbarLogger(z.Named("STORE"), conf)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// set up storage
	adapter, err := storage.OpenKV(ctx, conf, storeLogger)
	if err != nil {
		return errors.Wrap(err, "setting up storage")
	}
	defer func() {
		if err := adapter.Close(); err != nil {
			storeLogger.Error("Failed to close", err)
		}
	}()

	store, err := content.NewStore(adapter, storeLogger, content.WithSeed(conf.Storage.Seed))
	if err != nil {
		return errors.Wrap(err, "loading content")
	}

	provider, err := identitysvc.NewLocalProvider(conf)
	if err != nil {
		return errors.Wrap(err, "setting up identity provider")
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build), map[string]interface{}{
		"env":     conf.Env,
		"storage": conf.Storage.Backend,
	})
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Store:      store,
		Identity:   provider,
		Validate:   validate,
		Translator: translator,
	})

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.Publish("content", expvar.Func(func() interface{} { return store.Stats() }))

	debugSrv := &http.Server{Addr: conf.Server.DebugHost, Handler: http.DefaultServeMux}

	// =========================================================================
	// Start API Service

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := debugSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// the API keeps running without its debug endpoints
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
		return nil
	})
	g.Go(server.Start)

	// =========================================================================
	// Shutdown

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-server.ShutdownSignal():
		}
		logger.Info("Start shutdown...")

		// give outstanding requests a deadline for completion
		sctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		_ = debugSrv.Shutdown(sctx)

		// asking listener to shutdown and shed load
		if err := server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
			if err = server.Close(); err != nil {
				return errors.Wrap(err, "could not force stop server")
			}
		}
		return nil
	})

	return g.Wait()
}
