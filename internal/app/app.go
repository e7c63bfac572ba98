package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gokatarajesh/live-match-dashboard/internal/api"
	"github.com/gokatarajesh/live-match-dashboard/internal/config"
	"github.com/gokatarajesh/live-match-dashboard/internal/db/repository"
	"github.com/gokatarajesh/live-match-dashboard/internal/eventbus"
	"github.com/gokatarajesh/live-match-dashboard/internal/events"
	"github.com/gokatarajesh/live-match-dashboard/internal/live"
	"github.com/gokatarajesh/live-match-dashboard/internal/logging"
	"github.com/gokatarajesh/live-match-dashboard/internal/model"
	"github.com/gokatarajesh/live-match-dashboard/internal/poll"
	"github.com/gokatarajesh/live-match-dashboard/internal/server"
	"github.com/gokatarajesh/live-match-dashboard/internal/simulation"
	"github.com/gokatarajesh/live-match-dashboard/internal/timeline"
	ws "github.com/gokatarajesh/live-match-dashboard/pkg/http/ws"
)

// Application aggregates the managers, optional infrastructure (DB, cache,
// broker) and the HTTP server.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	bus   *eventbus.AMQPPublisher
	http  *http.Server

	sims  *simulation.Manager
	polls *poll.Manager
}

// New bootstraps the logger, the optional Postgres, Redis and AMQP
// connections, the simulation and poll managers and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	a := &Application{cfg: cfg, logger: logger}

	if cfg.Postgres.Enabled() {
		poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("parse postgres config: %w", err)
		}
		poolCfg.MaxConns = int32(cfg.Postgres.MaxConns)
		a.pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	} else {
		logger.Warn().Msg("PG_HOST not set; persistence routes disabled")
	}

	var snapshots simulation.SnapshotStore
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		snapshots = simulation.NewRedisSnapshotStore(a.redis, cfg.Redis.SnapshotTTL, logger)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; last known state snapshots disabled")
	}

	hub := ws.NewHub(logger)
	fanout := events.Fanout{live.NewHubPublisher(hub, logger)}

	if cfg.AMQP.URL != "" {
		bus, err := eventbus.Dial(cfg.AMQP.URL, eventbus.Options{
			Exchange:     cfg.AMQP.Exchange,
			IncludeTicks: cfg.AMQP.IncludeTicks,
			Buffer:       cfg.AMQP.Buffer,
		}, logger)
		if err != nil {
			a.closeInfra()
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		a.bus = bus
		fanout = append(fanout, bus)
	}

	loader := timeline.NewLoader(cfg.Simulation.TimelineDir, logger)
	a.polls = poll.NewManager(fanout, logger)
	a.sims = simulation.NewManager(loader, a.polls, fanout, simulation.ManagerOptions{
		Defaults: model.SimulationConfig{
			TimeMultiplier: cfg.Simulation.TimeMultiplier,
			AutoStart:      cfg.Simulation.AutoStart,
			MaxDuration:    cfg.Simulation.MaxDuration,
		},
		Snapshots: snapshots,
	}, logger)

	liveHandler := live.NewHandler(a.sims, a.polls, hub, server.NewWSUpgrader(cfg.CORS.AllowedOrigins), live.Options{
		SendQueue:   cfg.WebSocket.SendQueue,
		ReadTimeout: cfg.WebSocket.ReadTimeout,
	}, logger)

	routes := []server.Routes{api.NewSimulationHandlers(a.sims, a.polls, logger)}
	if a.pool != nil {
		matches := repository.NewMatchRepository(a.pool)
		routes = append(routes,
			api.NewMatchHandlers(matches, logger),
			api.NewPollHandlers(repository.NewPollRepository(a.pool), matches, logger),
			api.NewCommentaryHandlers(repository.NewCommentaryRepository(a.pool), matches, logger),
			api.NewTimelineHandlers(loader, repository.NewTimelineRepository(a.pool), matches, logger),
		)
	} else {
		routes = append(routes, api.NewTimelineHandlers(loader, nil, nil, logger))
	}

	a.http = server.NewHTTPServer(cfg, logger, server.Deps{
		Pool:      a.pool,
		Redis:     a.redis,
		WebSocket: http.HandlerFunc(liveHandler.HandleWebSocket),
		Routes:    routes,
	})

	return a, nil
}

// Run starts the HTTP server and the event mirror, and waits for a
// termination signal, a server failure or ctx cancellation.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	// Cancelled separately so the mirror flushes after simulations stop.
	busCtx, cancelBus := context.WithCancel(context.Background())
	defer cancelBus()
	busDone := make(chan struct{})
	if a.bus != nil {
		go func() {
			defer close(busDone)
			if err := a.bus.Run(busCtx); err != nil {
				a.logger.Warn().Err(err).Msg("eventbus publisher stopped")
			}
		}()
	} else {
		close(busDone)
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			a.logger.Info().Msg("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
		defer cancel()
		if err := a.http.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("http shutdown error")
		}
		return nil
	})

	err := g.Wait()

	a.sims.StopAll()
	cancelBus()
	<-busDone
	a.closeInfra()

	a.logger.Info().Msg("shutdown complete")
	return err
}

func (a *Application) closeInfra() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}
}

// Handler exposes the HTTP handler, used by in-process tests.
func (a *Application) Handler() http.Handler {
	return a.http.Handler
}

// Close stops every simulation and releases infrastructure without serving.
func (a *Application) Close() {
	a.sims.StopAll()
	if a.bus != nil {
		_ = a.bus.Close()
	}
	a.closeInfra()
}
