// Command server runs the file storage HTTP API.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"filevault/modules/auth"
	"filevault/modules/files"
	"filevault/modules/system"
	"filevault/pkg/blob"
	"filevault/pkg/config"
	"filevault/pkg/httpserver"
	"filevault/pkg/logger"
	"filevault/pkg/mongo"
	"filevault/pkg/queue"
	"filevault/pkg/redis"
	authsvc "filevault/svc/auth"
	filessvc "filevault/svc/files"
)

type appConfig struct {
	Logger  logger.Config
	HTTP    httpserver.Config
	Mongo   mongo.Config
	Redis   redis.Config
	Auth    authsvc.Config
	Storage storageConfig
}

type storageConfig struct {
	// Driver selects the blob backend: "local" or "s3".
	Driver string `env:"STORAGE_DRIVER" envDefault:"local"`
	Local  blob.LocalConfig
	S3     blob.S3Config
}

func main() {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger, logger.WithService("server"))
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	mongoClient, err := mongo.New(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background()) //nolint:errcheck
	db := mongoClient.Database(cfg.Mongo.Database)

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close() //nolint:errcheck

	blobs, err := newBlobStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	queueStorage, err := queue.NewRedisStorage(redisClient)
	if err != nil {
		return err
	}
	enqueuer, err := queue.NewEnqueuer(queueStorage)
	if err != nil {
		return err
	}

	authService := authsvc.NewService(cfg.Auth,
		authsvc.NewMongoUserRepository(db),
		authsvc.NewRedisSessionStore(redisClient),
	)
	filesService := filessvc.NewService(
		filessvc.NewMongoRepository(db), blobs, enqueuer, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	auth.Routes(r, authService)
	files.Routes(r, filesService, authService)
	system.Routes(r, system.Deps{
		RedisHealth: redis.Healthcheck(redisClient),
		DBHealth:    mongo.Healthcheck(mongoClient),
		CountUsers:  authService.CountUsers,
		CountFiles:  filesService.CountEntries,
	})

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

func newBlobStorage(ctx context.Context, cfg storageConfig) (blob.Storage, error) {
	if cfg.Driver == "s3" {
		return blob.NewS3Storage(ctx, cfg.S3)
	}
	return blob.NewLocalStorage(cfg.Local.FolderPath)
}
