// Command worker runs the background thumbnail pipeline.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"filevault/pkg/blob"
	"filevault/pkg/config"
	"filevault/pkg/logger"
	"filevault/pkg/mongo"
	"filevault/pkg/queue"
	"filevault/pkg/redis"
	filessvc "filevault/svc/files"
)

type appConfig struct {
	Logger  logger.Config
	Mongo   mongo.Config
	Redis   redis.Config
	Queue   queue.Config
	Storage storageConfig
}

type storageConfig struct {
	// Driver selects the blob backend: "local" or "s3".
	Driver string `env:"STORAGE_DRIVER" envDefault:"local"`
	Local  blob.LocalConfig
	S3     blob.S3Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger, logger.WithService("worker"))
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "worker exited with error", logger.Error(err))
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

	filesService := filessvc.NewService(
		filessvc.NewMongoRepository(db), blobs, nil, log)

	worker, err := queue.NewWorker(queueStorage,
		queue.WithPullInterval(cfg.Queue.PollInterval),
		queue.WithLockTimeout(cfg.Queue.LockTimeout),
		queue.WithMaxConcurrentTasks(cfg.Queue.MaxConcurrentTasks),
		queue.WithWorkerLogger(log),
	)
	if err != nil {
		return err
	}
	worker.RegisterHandlers(filesService.ThumbnailHandler())

	return worker.Run(ctx)()
}

func newBlobStorage(ctx context.Context, cfg storageConfig) (blob.Storage, error) {
	if cfg.Driver == "s3" {
		return blob.NewS3Storage(ctx, cfg.S3)
	}
	return blob.NewLocalStorage(cfg.Local.FolderPath)
}
