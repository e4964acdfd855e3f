package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"userhub/internal/config"
	"userhub/internal/logger"
	"userhub/internal/messaging"
	"userhub/internal/middleware"
	"userhub/pkg/timer"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Server represents the HTTP server
type Server struct {
	cfg      *config.Config
	log      *logger.Logger
	router   *gin.Engine
	mongo    *mongo.Client
	redis    *goredis.Client
	services *Services
}

// New connects to MongoDB and Redis and wires repositories, services and routes.
// Both clients are closed again if any later step fails.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	gin.SetMode(cfg.App.Mode)
	sw := timer.NewStopwatch(log)

	mongoClient, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	sw.Lap("connect mongo")

	rdb, err := ConnectRedis(cfg)
	if err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	sw.Lap("connect redis")

	return newServer(cfg, log, mongoClient, rdb, sw)
}

// newServer wires everything on top of connected clients.
func newServer(cfg *config.Config, log *logger.Logger, mongoClient *mongo.Client, rdb *goredis.Client, sw *timer.Stopwatch) (*Server, error) {
	s := &Server{cfg: cfg, log: log, mongo: mongoClient, redis: rdb}
	if err := s.init(sw); err != nil {
		if cerr := s.Close(); cerr != nil {
			log.Warn("failed to close clients after init error", "error", cerr)
		}
		return nil, err
	}
	sw.Total("server startup")
	return s, nil
}

func (s *Server) init(sw *timer.Stopwatch) error {
	repos := InitRepositories(s.cfg, s.mongo.Database(s.cfg.Mongo.Database))
	services, err := InitServices(s.cfg, s.log, repos, s.redis)
	if err != nil {
		return fmt.Errorf("failed to init services: %w", err)
	}
	handlers := InitHandlers(s.log, services, s.mongo, s.redis)
	sw.Lap("init services")

	if err := PopulateInitialData(s.cfg, s.log, repos); err != nil {
		return fmt.Errorf("failed to populate initial data: %w", err)
	}
	sw.Lap("populate initial data")

	s.services = services
	s.router = setupRouter(s.log, handlers, services)
	return nil
}

func Connect(cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI).SetAppName(cfg.App.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// ConnectRedis opens the client shared by the publisher, subscriber and locks
func ConnectRedis(cfg *config.Config) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Redis.Address(),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Close disconnects MongoDB and Redis clients
func (s *Server) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		errs = append(errs, s.mongo.Disconnect(ctx))
	}
	return errors.Join(errs...)
}

// Run starts the event feed subscriber and serves HTTP until ctx is done
func (s *Server) Run(ctx context.Context) error {
	sub := messaging.NewSubscriber(s.log, s.redis, s.services.Publisher.Channels()...)
	if err := sub.Start(ctx, s.services.Hub.Broadcast); err != nil {
		return fmt.Errorf("start event subscriber: %w", err)
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("user service listening", "addr", srv.Addr, "mode", s.cfg.App.Mode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Router exposes the engine for tests
func (s *Server) Router() *gin.Engine { return s.router }

func setupRouter(log *logger.Logger, h *Handlers, s *Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log.Desugar()))
	_ = r.SetTrustedProxies(nil)

	r.GET("/health", h.Health.Health)
	r.GET("/version", h.Health.Version)

	// All API routes require X-API-Key when a key hash is configured
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(s.APIKey), middleware.ActorMiddleware())

	users := api.Group("/users")
	{
		users.POST("", h.User.Create)
		users.GET("", h.User.List)
		users.GET("/current", h.User.Current)
		users.GET("/email/:email", h.User.GetByEmail)
		users.GET("/:ref", h.User.Get)
		users.PUT("/:ref", h.User.Update)
		users.DELETE("/:ref", h.User.Delete)
		users.POST("/:ref/organisations", h.User.AddOrganisation)
		users.DELETE("/:ref/organisations/:orgRef", h.User.RemoveOrganisation)
	}

	events := api.Group("/events")
	{
		events.GET("/ws", h.Events.Feed)
		events.POST("/replay", h.User.ReplayEvents)
	}

	return r
}
