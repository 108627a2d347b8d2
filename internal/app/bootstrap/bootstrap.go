// Package bootstrap is the composition root.
// Keep construction and wiring here so module code stays framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	eventservice "communitypulse/contexts/community-events/event-service"
	eventmemory "communitypulse/contexts/community-events/event-service/adapters/memory"
	eventnotify "communitypulse/contexts/community-events/event-service/adapters/notify"
	eventpostgres "communitypulse/contexts/community-events/event-service/adapters/postgres"
	eventworkers "communitypulse/contexts/community-events/event-service/application/workers"
	eventports "communitypulse/contexts/community-events/event-service/ports"
	trustscoreservice "communitypulse/contexts/community-events/trust-score-service"
	pollservice "communitypulse/contexts/community-signals/poll-service"
	pollpostgres "communitypulse/contexts/community-signals/poll-service/adapters/postgres"
	whisperservice "communitypulse/contexts/community-signals/whisper-service"
	whisperpostgres "communitypulse/contexts/community-signals/whisper-service/adapters/postgres"
	identityservice "communitypulse/contexts/identity-access/identity-service"
	identitymemory "communitypulse/contexts/identity-access/identity-service/adapters/memory"
	"communitypulse/contexts/identity-access/identity-service/adapters/passwords"
	identitypostgres "communitypulse/contexts/identity-access/identity-service/adapters/postgres"
	"communitypulse/contexts/identity-access/identity-service/adapters/tokens"
	"communitypulse/internal/app/bridges"
	"communitypulse/internal/platform/config"
	"communitypulse/internal/platform/db"
	"communitypulse/internal/platform/httpserver"
	"communitypulse/internal/platform/messaging"
	"communitypulse/internal/platform/monitoring"
	"communitypulse/internal/platform/ratelimit"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

type APIApp struct {
	server   *httpserver.Server
	workers  *Workers
	postgres *db.Postgres
	redis    *redis.Client
	logger   *slog.Logger
}

type WorkerApp struct {
	workers  *Workers
	postgres *db.Postgres
	redis    *redis.Client
	logger   *slog.Logger
}

// notificationGroup is the consumer group the notification dispatcher joins.
const notificationGroup = "notification-dispatcher"

// Workers drives the event-service background jobs on a fixed interval and,
// when Subscriber is set, feeds relayed envelopes to the notification
// dispatcher.
type Workers struct {
	Relay         eventworkers.OutboxRelay
	Reminders     eventworkers.ReminderScheduler
	Notifications eventworkers.NotificationDispatcher
	Subscriber    messaging.Subscriber
	PollInterval  time.Duration
	Logger        *slog.Logger
}

type eventStorage interface {
	eventports.EventRepository
	eventports.RSVPRepository
	eventports.FeedbackRepository
	eventports.SnapshotReader
	eventports.ReminderRepository
	eventports.OutboxRepository
}

type components struct {
	modules  httpserver.Modules
	events   eventStorage
	clock    eventports.Clock
	idGen    eventports.IDGenerator
	postgres *db.Postgres
}

func BuildAPI(ctx context.Context, cfg config.Config) (*APIApp, error) {
	logger := NewLogger(cfg, "api")
	built, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := monitoring.New()
	opts := []httpserver.Option{
		httpserver.WithMetrics(metrics),
		httpserver.WithTrustedProxy(cfg.TrustProxyHeaders),
	}
	if built.postgres != nil {
		opts = append(opts, httpserver.WithHealthCheck(func(ctx context.Context) error {
			sqlDB, err := built.postgres.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}))
	}

	app := &APIApp{postgres: built.postgres, logger: logger}
	if strings.TrimSpace(cfg.RedisURL) != "" {
		client, err := messaging.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.redis = client
		opts = append(opts, httpserver.WithRateLimiter(ratelimit.NewLimiter(client, cfg.RateLimitPerMinute, time.Minute)))
	}

	// Memory storage lives in this process, so the outbox can only drain here.
	if cfg.StorageDriver == config.StorageMemory {
		publisher, subscriber := newMessaging(app.redis, logger)
		app.workers = newWorkers(cfg, built, observedPublisher{next: publisher, metrics: metrics}, subscriber, newSender(app.redis, logger), logger)
	}

	app.server = httpserver.New(built.modules, logger, cfg.Addr(), opts...)
	return app, nil
}

func BuildWorker(ctx context.Context, cfg config.Config) (*WorkerApp, error) {
	logger := NewLogger(cfg, "worker")
	if cfg.StorageDriver != config.StoragePostgres {
		return nil, errors.New("worker requires the postgres storage driver; memory mode runs workers inside the api process")
	}
	built, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &WorkerApp{postgres: built.postgres, logger: logger}
	if strings.TrimSpace(cfg.RedisURL) != "" {
		client, err := messaging.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.redis = client
	}
	publisher, subscriber := newMessaging(app.redis, logger)
	app.workers = newWorkers(cfg, built, publisher, subscriber, newSender(app.redis, logger), logger)
	return app, nil
}

func buildComponents(ctx context.Context, cfg config.Config, logger *slog.Logger) (components, error) {
	secret := cfg.JWTSecret
	if strings.TrimSpace(secret) == "" {
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set; tokens will not survive a restart",
			"event", "bootstrap_ephemeral_jwt_secret",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	issuer := tokens.NewJWTIssuer(secret, cfg.TokenTTL)

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		return buildPostgres(ctx, cfg, issuer, logger)
	default:
		return buildMemory(cfg, issuer, logger), nil
	}
}

func buildMemory(cfg config.Config, issuer tokens.JWTIssuer, logger *slog.Logger) components {
	users := identitymemory.NewStore(nil)
	identity := identityservice.NewModule(identityservice.Dependencies{
		Users:       users,
		Hasher:      passwords.BcryptHasher{Cost: bcrypt.DefaultCost},
		Tokens:      issuer,
		Clock:       users,
		IDGen:       users,
		AdminEmails: cfg.AdminEmails,
		Logger:      logger,
	})
	identity.Store = users

	store := eventmemory.NewStore(nil)
	events := eventservice.NewModule(eventDependencies(store, store, store, identity, logger))
	events.Store = store

	return components{
		modules: httpserver.Modules{
			Identity: identity,
			Events:   events,
			Trust:    newTrustModule(events, identity, store, logger),
			Polls:    pollservice.NewInMemoryModule(nil, logger),
			Whispers: whisperservice.NewInMemoryModule(nil, logger),
		},
		events: store,
		clock:  store,
		idGen:  store,
	}
}

func buildPostgres(ctx context.Context, cfg config.Config, issuer tokens.JWTIssuer, logger *slog.Logger) (components, error) {
	pg, err := db.Connect(ctx, cfg.PostgresDSN, db.ConnectOptions{Logger: logger})
	if err != nil {
		return components{}, err
	}

	identityRepo := identitypostgres.NewRepository(pg.DB, logger)
	eventRepo := eventpostgres.NewRepository(pg.DB, logger)
	pollRepo := pollpostgres.NewRepository(pg.DB, logger)
	whisperRepo := whisperpostgres.NewRepository(pg.DB, logger)

	if cfg.AutoMigrate {
		for _, migrate := range []func(context.Context) error{
			identityRepo.Migrate,
			eventRepo.Migrate,
			pollRepo.Migrate,
			whisperRepo.Migrate,
		} {
			if err := migrate(ctx); err != nil {
				_ = pg.Close()
				return components{}, err
			}
		}
		logger.Info("schema migrated",
			"event", "bootstrap_schema_migrated",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	identity := identityservice.NewModule(identityservice.Dependencies{
		Users:       identityRepo,
		Hasher:      passwords.BcryptHasher{Cost: bcrypt.DefaultCost},
		Tokens:      issuer,
		Clock:       identitypostgres.SystemClock{},
		IDGen:       identitypostgres.UUIDGenerator{},
		AdminEmails: cfg.AdminEmails,
		Logger:      logger,
	})
	clock := eventpostgres.SystemClock{}
	idGen := eventpostgres.UUIDGenerator{}
	events := eventservice.NewModule(eventDependencies(eventRepo, clock, idGen, identity, logger))

	return components{
		modules: httpserver.Modules{
			Identity: identity,
			Events:   events,
			Trust:    newTrustModule(events, identity, clock, logger),
			Polls: pollservice.NewModule(pollservice.Dependencies{
				Polls:  pollRepo,
				Clock:  pollpostgres.SystemClock{},
				IDGen:  pollpostgres.UUIDGenerator{},
				Logger: logger,
			}),
			Whispers: whisperservice.NewModule(whisperservice.Dependencies{
				Whispers: whisperRepo,
				Clock:    whisperpostgres.SystemClock{},
				IDGen:    whisperpostgres.UUIDGenerator{},
				Logger:   logger,
			}),
		},
		events:   eventRepo,
		clock:    clock,
		idGen:    idGen,
		postgres: pg,
	}, nil
}

func eventDependencies(
	storage eventStorage,
	clock eventports.Clock,
	idGen eventports.IDGenerator,
	identity identityservice.Module,
	logger *slog.Logger,
) eventservice.Dependencies {
	return eventservice.Dependencies{
		Events:    storage,
		RSVPs:     storage,
		Feedback:  storage,
		Snapshots: storage,
		Directory: bridges.Directory{Identity: identity.Service},
		Users:     bridges.UserStats{Identity: identity.Service},
		Clock:     clock,
		IDGen:     idGen,
		Logger:    logger,
	}
}

func newTrustModule(events eventservice.Module, identity identityservice.Module, clock eventports.Clock, logger *slog.Logger) trustscoreservice.Module {
	return trustscoreservice.NewModule(trustscoreservice.Dependencies{
		Activity:  bridges.Activity{Snapshots: events.Snapshots},
		Directory: bridges.Directory{Identity: identity.Service},
		Clock:     clock,
		Logger:    logger,
	})
}

// newMessaging pairs a publisher with a subscriber on the same transport, so
// the relay and the dispatcher meet on one bus.
func newMessaging(client *redis.Client, logger *slog.Logger) (eventports.EventPublisher, messaging.Subscriber) {
	if client == nil {
		bus := messaging.NewBus(logger)
		return bus, bus
	}
	return messaging.NewRedisPublisher(client, logger), messaging.NewRedisSubscriber(client, logger)
}

func newSender(client *redis.Client, logger *slog.Logger) eventports.NotificationSender {
	if client == nil {
		return eventnotify.LogSender{Logger: logger}
	}
	return eventnotify.NewRedisQueueSender(client, eventnotify.DefaultQueueKey)
}

func newWorkers(
	cfg config.Config,
	built components,
	publisher eventports.EventPublisher,
	subscriber messaging.Subscriber,
	sender eventports.NotificationSender,
	logger *slog.Logger,
) *Workers {
	return &Workers{
		Relay: eventworkers.OutboxRelay{
			Outbox:    built.events,
			Publisher: publisher,
			Clock:     built.clock,
			BatchSize: 100,
			Logger:    logger,
		},
		Reminders: eventworkers.ReminderScheduler{
			Reminders: built.events,
			Clock:     built.clock,
			IDGen:     built.idGen,
			Window:    cfg.ReminderWindow,
			BatchSize: 100,
			Logger:    logger,
		},
		Notifications: eventworkers.NotificationDispatcher{
			RSVPs:  built.events,
			Sender: sender,
			Logger: logger,
		},
		Subscriber:   subscriber,
		PollInterval: cfg.WorkerPollInterval,
		Logger:       logger,
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func NewLogger(cfg config.Config, process string) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	return slog.Default().With("service", cfg.ServiceName, "process", process)
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"in_process_workers", a.workers != nil,
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return a.server.Run(groupCtx) })
	if a.workers != nil {
		group.Go(func() error { return a.workers.Run(groupCtx) })
	}
	return group.Wait()
}

func (a *APIApp) Close() error {
	return closeAll(a.postgres, a.redis)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.workers.PollInterval.String(),
	)
	return w.workers.Run(ctx)
}

func (w *WorkerApp) Close() error {
	return closeAll(w.postgres, w.redis)
}

// Run ticks the reminder scheduler and the outbox relay concurrently until
// ctx is cancelled. A failed tick is logged and retried on the next one.
// Notification subscriptions are in place before the first relay tick.
func (w *Workers) Run(ctx context.Context) error {
	interval := w.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if w.Subscriber != nil && w.Notifications.Sender != nil {
		if waiter, ok := w.Subscriber.(interface{ Wait() }); ok {
			defer waiter.Wait()
		}
		subCtx, cancelSubs := context.WithCancel(ctx)
		defer cancelSubs()
		for _, topic := range w.Notifications.Topics() {
			if err := w.Subscriber.Subscribe(subCtx, topic, notificationGroup, w.Notifications.Handle); err != nil {
				return err
			}
		}
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return w.loop(groupCtx, "reminder_scheduler", interval, w.Reminders.RunOnce)
	})
	group.Go(func() error {
		return w.loop(groupCtx, "outbox_relay", interval, w.Relay.RunOnce)
	})
	return group.Wait()
}

func (w *Workers) loop(ctx context.Context, name string, interval time.Duration, runOnce func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.Logger.Error("worker tick failed",
				"event", "bootstrap_worker_tick_failed",
				"module", "internal/app/bootstrap",
				"layer", "worker",
				"worker", name,
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// observedPublisher counts relayed envelopes per topic.
type observedPublisher struct {
	next    eventports.EventPublisher
	metrics *monitoring.Metrics
}

func (p observedPublisher) Publish(ctx context.Context, topic string, event eventports.EventEnvelope) error {
	err := p.next.Publish(ctx, topic, event)
	p.metrics.ObserveOutbox(topic, err)
	return err
}

func closeAll(pg *db.Postgres, client *redis.Client) error {
	var errs []error
	if client != nil {
		errs = append(errs, client.Close())
	}
	if pg != nil {
		errs = append(errs, pg.Close())
	}
	return errors.Join(errs...)
}
