package app

import (
	"context"

	"github.com/matheus3301/wpp-client/internal/api"
	"github.com/matheus3301/wpp-client/internal/bus"
	"github.com/matheus3301/wpp-client/internal/channel"
	"github.com/matheus3301/wpp-client/internal/config"
	"github.com/matheus3301/wpp-client/internal/lock"
	"github.com/matheus3301/wpp-client/internal/logging"
	"github.com/matheus3301/wpp-client/internal/profile"
	"github.com/matheus3301/wpp-client/internal/status"
	"github.com/matheus3301/wpp-client/internal/store"
	"github.com/matheus3301/wpp-client/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Params holds the resolved profile passed to the fx module.
type Params struct {
	Profile  string
	Settings config.Profile
	// LogPath overrides the profile log file; empty means the default.
	LogPath string
	// LockDir overrides where the instance lock lives; empty means the
	// profile directory.
	LockDir string
}

// Module returns the fx module for the terminal client, composing all
// providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Options(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Module("wpp",
			fx.Supply(p),
			fx.Provide(
				provideLogger,
				provideBus,
				provideStateMachine,
				provideAPIClient,
				provideChannel,
				provideStore,
				provideTUI,
			),
			fx.Invoke(registerLifecycle),
		),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	path := p.LogPath
	if path == "" {
		if err := profile.EnsureDir(p.Profile); err != nil {
			return nil, err
		}
		path = profile.LogPath(p.Profile)
	}
	return logging.New(path, p.Profile, logging.Options{Level: p.Settings.LogLevel})
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideAPIClient(p Params) (*api.Client, error) {
	return api.NewClient(p.Settings.BackendURI, api.WithTimeout(p.Settings.RequestTimeout))
}

func provideChannel(p Params, b *bus.Bus, m *status.Machine, logger *zap.Logger) (*channel.Client, error) {
	return channel.New(p.Settings.BackendURI, p.Settings.ChannelPath, b, m, logger)
}

func provideStore(client *api.Client, ch *channel.Client, b *bus.Bus, logger *zap.Logger) *store.Store {
	return store.New(client, ch, b, logger)
}

func provideTUI(p Params, s *store.Store, b *bus.Bus, m *status.Machine, logger *zap.Logger) *tui.App {
	return tui.NewApp(s, b, m, logger, tui.Options{
		Profile:    p.Profile,
		BackendURI: p.Settings.BackendURI,
	})
}

// registerLifecycle opens the event channel and the store on start, runs
// the initial chat fetch and the TUI, and shuts the process down when the
// TUI exits.
func registerLifecycle(lc fx.Lifecycle, sd fx.Shutdowner, p Params, ch *channel.Client, s *store.Store, ui *tui.App, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	channelDone := make(chan struct{})
	var held *lock.Lock

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			dir := p.LockDir
			if dir == "" {
				dir = profile.Dir(p.Profile)
			}
			l, err := lock.Acquire(dir, p.Settings.BackendURI)
			if err != nil {
				cancel()
				return err
			}
			held = l

			logger.Info("starting",
				zap.String("backend", p.Settings.BackendURI),
				zap.String("channel", ch.URL()),
			)
			s.Start(ctx)

			go func() {
				defer close(channelDone)
				if err := ch.Run(ctx); err != nil {
					logger.Error("event channel stopped", zap.Error(err))
				}
			}()

			go func() {
				_ = s.FetchChats(ctx)
			}()

			go func() {
				if err := ui.Run(); err != nil {
					logger.Error("tui exited", zap.Error(err))
				}
				if err := sd.Shutdown(); err != nil {
					logger.Warn("shutdown", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			ui.Stop()
			_ = ch.Close()
			cancel()
			select {
			case <-channelDone:
			case <-stopCtx.Done():
			}
			s.Stop()
			if err := held.Release(); err != nil {
				logger.Warn("release lock", zap.Error(err))
			}
			logger.Info("stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
