package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"world-vlog/domain/repository"
	"world-vlog/infrastructure/cache"
	youtubeclient "world-vlog/infrastructure/clients/youtube"
	"world-vlog/infrastructure/configuration"
	"world-vlog/infrastructure/logger"
	"world-vlog/infrastructure/persistence"
	"world-vlog/infrastructure/pubsub"
	"world-vlog/infrastructure/realtime"
	"world-vlog/infrastructure/servicebus"
	"world-vlog/infrastructure/utils"
	httpHandler "world-vlog/interfaces/http"
	"world-vlog/server"
	"world-vlog/usecase"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

// stores holds whichever backends the configured drivers needed.
type stores struct {
	mongo    *mongo.Client
	psql     *sql.DB
	mssql    *sql.DB
	redis    *redis.Client
	cache    repository.IVideoCache
	ratings  repository.IRating
	closeFns []func()
}

func (s *stores) close() {
	for i := len(s.closeFns) - 1; i >= 0; i-- {
		s.closeFns[i]()
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	if loaded := configuration.LoadEnvFromFile("config.env", ".env"); len(loaded) > 0 {
		logger.GetLogger().WithField("files", loaded).Info("Loaded environment files")
		configuration.Reload()
	}
	cfg := configuration.C

	issueToken := pflag.String("issue-admin-token", "", "print an admin bearer token for `subject` and exit")
	tokenTTL := pflag.Duration("admin-token-ttl", 24*time.Hour, "lifetime of the issued admin token, 0 for none")
	pflag.Parse()
	if *issueToken != "" {
		token, err := utils.IssueAdminToken(*issueToken, cfg.App.SecretKey, *tokenTTL)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while issuing admin token")
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	st := initiateStores(ctx, cfg)
	defer st.close()

	if st.cache != nil {
		st.cache = persistence.NewBreakerVideoCache(st.cache, "video-cache", cfg.Cache.BreakerFailures, cfg.Cache.BreakerTimeout)
	}

	search := initiateSearch(ctx, cfg)
	events, stopEvents := initiateRatingEvents(ctx, cfg)
	defer stopEvents()
	ratingHub := realtime.NewRatingHub()
	events = append(events, ratingHub)

	memory := cache.NewMemoryCache(cfg.Cache.MemoryCapacity, cfg.Cache.MemoryTTL)
	tiered := usecase.NewTieredVideoCache(memory, st.cache, usecase.CacheConfig{
		PersistentTTL: cfg.Cache.PersistentTTL,
		StoreTimeout:  cfg.Cache.StoreTimeout,
	})
	filter := usecase.NewRelevanceFilter(usecase.FilterConfig{
		MinViews:           cfg.Search.MinViews,
		MinDurationSeconds: cfg.Search.MinDurationSeconds,
		ExcludeTerms:       cfg.Search.ExcludeTerms,
	})
	orchestrator := usecase.NewSearchOrchestrator(search, filter)
	ratingUseCase := usecase.NewRatingUseCase(st.ratings, usecase.RatingConfig{BatchSize: cfg.Rating.BatchSize}, events...)
	pool := usecase.NewRandomPool(st.cache, ratingUseCase, usecase.PoolConfig{
		TTL:   cfg.Pool.TTL,
		Size:  cfg.Pool.Size,
		Score: usecase.WeightedScore{LikeWeight: cfg.Pool.LikeWeight, DislikeWeight: cfg.Pool.DislikeWeight},
	})
	videoUseCase := usecase.NewVideoUseCase(tiered, orchestrator, ratingUseCase, pool, usecase.VideoConfig{
		CacheVersion: cfg.Cache.Version,
		PageSize:     cfg.Search.PageSize,
	})

	router := server.InitiateRouter(
		server.RouterConfig{AllowOrigins: cfg.App.AllowOrigins, SecretKey: cfg.App.SecretKey},
		httpHandler.NewVideoHandler(videoUseCase, ratingUseCase, pool),
		httpHandler.NewAdminHandler(videoUseCase, pool),
		httpHandler.NewHealthHandler(),
		ratingHub,
	)

	app := cfg.App
	logger.GetLogger().WithFields(map[string]interface{}{
		"port":         app.Port,
		"tls":          app.TLSEnabled,
		"cacheDriver":  cfg.Storage.CacheDriver,
		"ratingDriver": cfg.Storage.RatingDriver,
		"cacheVersion": cfg.Cache.Version,
		"searchLive":   search != nil,
	}).Info("Starting application")

	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", app.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// initiateStores opens the backends named by storage.cacheDriver and storage.ratingDriver.
// A backend that cannot be reached leaves its concern nil: the memory tier and unrated results keep serving.
func initiateStores(ctx context.Context, cfg configuration.Config) *stores {
	st := &stores{}
	drivers := map[string]bool{cfg.Storage.CacheDriver: true, cfg.Storage.RatingDriver: true}

	if drivers[configuration.DriverMongo] {
		db := cfg.Database.Mongo
		client, err := persistence.NewMongoDb(db.Host, db.Port, db.User, db.Password, db.Name)
		if err == nil {
			err = client.Ping(ctx, nil)
		}
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without Mongo features")
		} else {
			logger.GetLogger().Info("MongoDB connected successfully")
			st.mongo = client
			st.closeFns = append(st.closeFns, func() { _ = client.Disconnect(context.Background()) })
		}
	}
	if drivers[configuration.DriverPostgres] {
		db, err := persistence.NewPostgreSQLDB(cfg.Database.Psql)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("PostgreSQL not available")
		} else {
			st.psql = db
			st.closeFns = append(st.closeFns, func() { _ = db.Close() })
		}
	}
	if drivers[configuration.DriverMSSQL] {
		db, err := persistence.NewMSSQLDB(cfg.Database.Mssql)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("MSSQL not available")
		} else {
			st.mssql = db
			st.closeFns = append(st.closeFns, func() { _ = db.Close() })
		}
	}
	if drivers[configuration.DriverRedis] {
		client, err := cache.NewCache(
			ctx,
			fmt.Sprintf("%s:%s", cfg.RedisClient.Host, cfg.RedisClient.Port),
			cfg.RedisClient.Username,
			cfg.RedisClient.Password,
		)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Redis not available")
		} else {
			logger.GetLogger().Info("Redis client initialized successfully.")
			st.redis = client
			st.closeFns = append(st.closeFns, func() { _ = client.Close() })
		}
	}

	switch cfg.Storage.CacheDriver {
	case configuration.DriverMongo:
		if st.mongo != nil {
			st.cache = persistence.NewVideoCacheRepositoryMongo(st.mongo, cfg.Database.Mongo.Name)
		}
	case configuration.DriverPostgres:
		if st.psql != nil {
			if err := persistence.EnsureVideoCacheSchema(st.psql); err != nil {
				logger.GetLogger().WithField("error", err).Error("failed ensuring video cache schema")
			}
			st.cache = persistence.NewVideoCacheRepository(st.psql)
		}
	case configuration.DriverMSSQL:
		if st.mssql != nil {
			if err := persistence.EnsureVideoCacheSchemaMSSQL(st.mssql); err != nil {
				logger.GetLogger().WithField("error", err).Error("failed ensuring video cache schema")
			}
			st.cache = persistence.NewVideoCacheRepositoryMSSQL(st.mssql)
		}
	default:
		logger.GetLogger().WithField("driver", cfg.Storage.CacheDriver).Warn("Unknown cache driver; persistent tier disabled")
	}

	switch cfg.Storage.RatingDriver {
	case configuration.DriverMongo:
		if st.mongo != nil {
			st.ratings = persistence.NewRatingRepositoryMongo(st.mongo, cfg.Database.Mongo.Name)
		}
	case configuration.DriverPostgres:
		if st.psql != nil {
			if err := persistence.EnsureRatingSchema(st.psql); err != nil {
				logger.GetLogger().WithField("error", err).Error("failed ensuring rating schema")
			}
			st.ratings = persistence.NewRatingRepository(st.psql)
		}
	case configuration.DriverMSSQL:
		if st.mssql != nil {
			if err := persistence.EnsureRatingSchemaMSSQL(st.mssql); err != nil {
				logger.GetLogger().WithField("error", err).Error("failed ensuring rating schema")
			}
			st.ratings = persistence.NewRatingRepositoryMSSQL(st.mssql)
		}
	case configuration.DriverRedis:
		if st.redis != nil {
			st.ratings = persistence.NewRatingRepositoryRedis(st.redis)
		}
	default:
		logger.GetLogger().WithField("driver", cfg.Storage.RatingDriver).Warn("Unknown rating driver; ratings disabled")
	}

	logger.GetLogger().
		WithField("persistentCache", st.cache != nil).
		WithField("ratings", st.ratings != nil).
		Info("Storage initialized")
	return st
}

// initiateSearch returns nil when no credential is configured; queries then fail only on a full cache miss.
func initiateSearch(ctx context.Context, cfg configuration.Config) repository.IVideoSearch {
	youtubeConfig, err := configuration.GetYouTubeConfig()
	if err != nil || !youtubeConfig.HasCredential() {
		logger.GetLogger().WithField("error", err).Warn("YouTube API credentials not configured - cache-only mode")
		return nil
	}

	client, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		ClientID:        youtubeConfig.ClientID,
		ClientSecret:    youtubeConfig.ClientSecret,
		RedirectURL:     youtubeConfig.RedirectURL,
		AccessToken:     youtubeConfig.AccessToken,
		RefreshToken:    youtubeConfig.RefreshToken,
		APIKey:          youtubeConfig.APIKey,
		DetailBatchSize: cfg.Search.DetailBatchSize,
		Timeout:         cfg.Search.Timeout,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to initialize YouTube client - cache-only mode")
		return nil
	}
	logger.GetLogger().WithField("apiKey", youtubeConfig.APIKey != "").Info("YouTube client initialized")
	return client
}

// initiateRatingEvents builds the optional Pub/Sub and Service Bus sinks.
func initiateRatingEvents(ctx context.Context, cfg configuration.Config) ([]repository.IRatingEvents, func()) {
	var sinks []repository.IRatingEvents
	var stops []func()

	if cfg.Pubsub.ProjectID != "" && cfg.Pubsub.RatingTopic != "" {
		client, err := pubsub.NewPubSub(ctx, cfg.Pubsub.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while instantiate PubSub")
		} else {
			publisher, err := pubsub.NewRatingPublisher(ctx, client, cfg.Pubsub.RatingTopic)
			if err != nil {
				logger.GetLogger().WithField("error", err).Error("Error while resolving rating topic")
				_ = client.Close()
			} else {
				sinks = append(sinks, publisher)
				stops = append(stops, func() {
					if s, ok := publisher.(interface{ Stop() }); ok {
						s.Stop()
					}
					_ = client.Close()
				})
			}
		}
	}

	if cfg.ServiceBus.Namespace != "" && cfg.ServiceBus.RatingQueue != "" {
		client, err := servicebus.NewServiceBus(ctx, cfg.ServiceBus.Namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus features")
		} else {
			sinks = append(sinks, servicebus.NewRatingPublisher(client, cfg.ServiceBus.RatingQueue))
			stops = append(stops, func() { _ = client.Close(context.Background()) })
		}
	}

	return sinks, func() {
		for _, stop := range stops {
			stop()
		}
	}
}
