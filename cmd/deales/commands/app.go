package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"deales/internal/client/api"
	"deales/internal/client/config"
	"deales/internal/client/guard"
	"deales/internal/client/registration"
	"deales/internal/client/session"
	"deales/internal/client/session/storage"
	"deales/internal/client/wizard"
	"deales/internal/platform/logger"
)

// app is the dependency graph shared by subcommands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	session *session.Store
	api     *api.Client
	flows   *registration.Service
	router  *guard.Router
	drafts  *wizard.DraftStore
	closers []io.Closer
}

func newApp(ctx context.Context, home string, ephemeral bool, stderr io.Writer) (*app, error) {
	if home == "" {
		var err error
		if home, err = config.DefaultHome(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return nil, fmt.Errorf("create home: %w", err)
	}
	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}
	if ephemeral {
		cfg.Session.Storage = "memory"
	}

	a := &app{
		cfg:    cfg,
		logger: logger.New(stderr, cfg.Log.Format, cfg.Log.Level),
		drafts: wizard.NewDraftStore(cfg.DraftDir()),
	}

	slot, err := a.openStorage()
	if err != nil {
		return nil, err
	}
	a.session, err = session.New(slot, session.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	if err := a.session.Hydrate(ctx); err != nil {
		return nil, err
	}

	a.api = api.New(cfg.API.URL, a.session,
		api.WithTimeout(cfg.Client.Timeout),
		api.WithLogger(a.logger),
		api.WithUnauthorizedHook(func(ctx context.Context) {
			if err := a.session.ClearToken(ctx); err != nil {
				a.logger.WarnContext(ctx, "failed to clear rejected session", "error", err)
			}
		}),
	)
	a.flows, err = registration.New(a.api, a.api, a.session, registration.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	a.router = guard.NewRouter(guard.New(a.session))
	return a, nil
}

func (a *app) openStorage() (session.Storage, error) {
	switch a.cfg.Session.Storage {
	case "memory":
		return storage.NewMemory(), nil
	case "file":
		return storage.NewFile(a.cfg.Home, session.SlotName), nil
	case "redis":
		opts, err := redis.ParseURL(a.cfg.Session.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse session redis url: %w", err)
		}
		client := redis.NewClient(opts)
		a.closers = append(a.closers, client)
		return storage.NewRedis(client, a.cfg.Session.Prefix, session.SlotName), nil
	default:
		return nil, fmt.Errorf("unknown session storage %q", a.cfg.Session.Storage)
	}
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
