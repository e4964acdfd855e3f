package server

import (
	"context"
	"fmt"
	"time"

	"userhub/internal/config"
	"userhub/internal/handler"
	"userhub/internal/logger"
	"userhub/internal/messaging"
	"userhub/internal/model"
	"userhub/internal/repository"
	"userhub/internal/service"
	"userhub/internal/validation"
	"userhub/pkg/distlock"
	"userhub/pkg/util"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Repositories groups the persistence layer
type Repositories struct {
	User repository.IUserRepository
}

// Services groups the business layer
type Services struct {
	User      *service.UserService
	APIKey    *service.APIKeyService
	Publisher *messaging.RedisPublisher
	Hub       *service.EventHub
}

// Handlers groups the HTTP layer
type Handlers struct {
	User   *handler.UserHandler
	Events *handler.EventHandler
	Health *handler.HealthHandler
}

func InitRepositories(cfg *config.Config, db *mongo.Database) *Repositories {
	return &Repositories{
		User: repository.NewUserRepository(db, cfg.Mongo.Collection),
	}
}

func InitServices(cfg *config.Config, log *logger.Logger, repos *Repositories, rdb *goredis.Client) (*Services, error) {
	publisher, err := messaging.NewRedisPublisher(log, rdb, cfg.Channels)
	if err != nil {
		return nil, err
	}

	var opts []service.Option
	if cfg.Redis.LockTTL > 0 {
		opts = append(opts, service.WithLocker(distlock.NewRedisLocker(rdb, cfg.Redis.LockTTL)))
	}

	return &Services{
		User:      service.NewUserService(repos.User, publisher, cfg, log, opts...),
		APIKey:    service.NewAPIKeyService(cfg, log),
		Publisher: publisher,
		Hub:       service.NewEventHub(0),
	}, nil
}

func InitHandlers(log *logger.Logger, s *Services, mongoClient *mongo.Client, rdb *goredis.Client) *Handlers {
	return &Handlers{
		User:   handler.NewUserHandler(s.User, validation.DefaultWalker()),
		Events: handler.NewEventHandler(s.Hub, log),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"mongo": handler.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) }),
			"redis": handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		}),
	}
}

// PopulateInitialData creates indexes and seeds the system user, the
// bootstrap actor for the first user creations.
func PopulateInitialData(cfg *config.Config, log *logger.Logger, repos *Repositories) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repos.User.EnsureIndexes(ctx); err != nil {
		return err
	}

	sys := cfg.SystemUser
	ref := util.CanonicalReference(sys.Reference)
	user := model.NewUser(model.CreateUserRequest{
		UserReference: ref,
		Email:         sys.Email,
		FirstName:     sys.FirstName,
		LastName:      sys.LastName,
	}, ref, time.Now())
	user.IsVerifiedEmail = true

	created, err := repository.Seed(ctx, repos.User, user)
	if err != nil {
		return fmt.Errorf("seed system user: %w", err)
	}
	if created {
		log.Info("system user created", "user_reference", ref, "email", sys.Email)
	}
	return nil
}
