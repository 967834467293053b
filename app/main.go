package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/inkwell-app/inkwell/internal/blogservice"
	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/mailservice"
	"github.com/inkwell-app/inkwell/internal/userservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	userService *userservice.UserService
	blogService *blogservice.BlogService
	mailService *mailservice.MailService
	broker      *common.MessageBroker
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Open the key-value store that backs both collections.
	store, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open the storage backend", slog.String("error", err.Error()), slog.String("driver", cfg.StorageDriver))
		os.Exit(1)
	}
	defer closeStore()

	// Connect to the message broker and declare the user exchange.
	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupUserExchange(broker)
	if err != nil {
		logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Services load their collections into memory once at startup.
	ctx := context.Background()
	cache := common.NewCache(userservice.SessionTokenTime, time.Hour)

	userService, err := userservice.NewUserService(ctx, store, cache, broker)
	if err != nil {
		logger.Error("failed to load the user collection", slog.String("error", err.Error()))
		os.Exit(1)
	}

	blogService, err := blogservice.NewBlogService(ctx, store)
	if err != nil {
		logger.Error("failed to load the blog collection", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userService,
		blogService: blogService,
		broker:      broker,
		mailService: mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, logger),
	}

	go app.mailService.SendWelcomeEmail()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openStore builds the KVStore named by STORAGE_DRIVER. The returned close
// function is a no-op for backends without a connection to release.
func openStore(cfg *Config) (common.KVStore, func(), error) {
	switch cfg.StorageDriver {
	case "file":
		store, err := common.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "redis":
		store, err := common.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "postgres":
		db, err := common.ConnectPostgres(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
		if err != nil {
			return nil, nil, err
		}
		return common.NewPostgresStore(db), func() { db.Close() }, nil
	case "memory":
		return common.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
}
