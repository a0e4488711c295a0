package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adil-khursheed/mysterymessage/internal/config"
	"github.com/adil-khursheed/mysterymessage/internal/httpapi"
	"github.com/adil-khursheed/mysterymessage/internal/logging"
	"github.com/adil-khursheed/mysterymessage/internal/store"
	"github.com/adil-khursheed/mysterymessage/internal/store/memory"
	"github.com/adil-khursheed/mysterymessage/internal/store/mongodb"
	"github.com/adil-khursheed/mysterymessage/internal/store/postgres"
	"github.com/adil-khursheed/mysterymessage/internal/suggest"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	st, closer, err := openStore(cfg)
	if err != nil {
		logger.Error(ctx, "failed to init store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer closer()
	logger.Info(ctx, "store ready", "store", cfg.Store)

	sg := newSuggester(cfg)
	logger.Info(ctx, "suggestion provider ready", "provider", cfg.SuggestProvider)

	srv := httpapi.NewServer(cfg, st, sg, logger)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening", "addr", cfg.ListenAddr())
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info(ctx, "shutdown requested")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server error", "error", err)
		}
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(ctx, 10*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
}

func openStore(cfg config.Config) (store.Store, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pg, err := postgres.NewStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case config.StoreMongo:
		mg, err := mongodb.NewStore(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return mg, mg.Close, nil
	case config.StoreMemory:
		return memory.NewStore(), func() {}, nil
	default:
		return nil, nil, errors.New("unknown store " + cfg.Store)
	}
}

func newSuggester(cfg config.Config) suggest.Suggester {
	switch cfg.SuggestProvider {
	case config.ProviderGemini:
		return suggest.NewGemini(cfg.GoogleAPIKey)
	case config.ProviderOpenAI:
		return suggest.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	default:
		return suggest.NewStatic()
	}
}
