package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tweetledger/internal/cache"
	"tweetledger/internal/config"
	"tweetledger/internal/handler"
	"tweetledger/internal/logger"
	"tweetledger/internal/metrics"
	"tweetledger/internal/model"
	"tweetledger/internal/queue"
	redisclient "tweetledger/internal/redis"
	"tweetledger/internal/service"
	"tweetledger/internal/storage"
	"tweetledger/internal/worker"
)

// ledgerStreamMaxLen bounds the event stream; the ledger itself is the
// source of truth, so old events are safe to trim.
const ledgerStreamMaxLen = 100000

const shutdownTimeout = 15 * time.Second

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()

	// 2. Optional Redis: event stream and timeline cache
	var (
		publisher queue.Publisher
		timeline  cache.TimelineCache
		rc        *redisclient.Client
	)
	if cfg.RedisURL != "" {
		rc, err = redisclient.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rc.Close()
		publisher = metrics.InstrumentPublisher(queue.NewPublisher(rc.Client, log, ledgerStreamMaxLen), collector)
		timeline = cache.NewTimelineCache(rc.Client, log)
	} else {
		log.Info("REDIS_URL not set; events and timeline cache disabled")
	}

	// 3. Storage and schema controller
	store, err := storage.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	schemaService := service.NewSchemaService(store.Schema(), publisher, log)
	if err := schemaService.Bootstrap(ctx, cfg.DeployerAccount, model.SchemaVersion(cfg.InitialSchemaVersion)); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	log.Info("schema ready", zap.Stringer("version", schemaService.Current()))
	go schemaService.Watch(ctx, cfg.SchemaRefreshInterval)
	collector.WatchSchema(schemaService.Current)

	repos := store.Bind(schemaService.Current)

	// 4. Workers
	if rc != nil {
		consumer := queue.NewConsumer(rc.Client, log)
		eventHandler := worker.NewHandler(timeline, repos.Tweets, log)
		manager := worker.NewManager(consumer, eventHandler, log, worker.DefaultManagerConfig())
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
		defer manager.Stop()
	}

	// 5. Optional media storage
	var mediaService *service.MediaService
	if cfg.MediaEnabled() {
		mediaService, err = service.NewMediaService(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to init media service: %w", err)
		}
	} else {
		log.Info("R2 settings incomplete; media uploads disabled")
	}

	// 6. Services and handlers
	router := newAPI(cfg, log, schemaService, repos, publisher, timeline, mediaService, collector)

	// 7. Serve until signalled
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// newAPI builds the services and handlers over repos. publisher, timeline,
// mediaService and collector may be nil.
func newAPI(
	cfg *config.Config,
	log *zap.Logger,
	schemaService *service.SchemaService,
	repos storage.Repositories,
	publisher queue.Publisher,
	timeline cache.TimelineCache,
	mediaService *service.MediaService,
	collector *metrics.Collector,
) chi.Router {
	var uploader service.IconUploader
	if mediaService != nil {
		uploader = mediaService
	}

	authService := service.NewAuthService(repos.Accounts, cfg, log)
	tweetService := service.NewTweetService(repos.Tweets, repos.Likes, schemaService, timeline, publisher, log)
	commentService := service.NewCommentService(repos.Comments, schemaService, publisher, log)
	followService := service.NewFollowService(repos.Follows, publisher, log)
	profileService := service.NewProfileService(repos.Profiles, schemaService, uploader, log)

	return NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(authService, log),
		TweetHandler:   handler.NewTweetHandler(tweetService, log),
		CommentHandler: handler.NewCommentHandler(commentService, log),
		FollowHandler:  handler.NewFollowHandler(followService, log),
		ProfileHandler: handler.NewProfileHandler(profileService, log),
		MediaHandler:   handler.NewMediaHandler(mediaService, log),
		SchemaHandler:  handler.NewSchemaHandler(schemaService, log),
		JWTSecret:      cfg.JWTSecret,
		IsOperator:     cfg.IsOperator,
		Logger:         log,
		Metrics:        collector,
	})
}
