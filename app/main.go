package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/automaatte/platform/internal/aiservice"
	"github.com/automaatte/platform/internal/authservice"
	"github.com/automaatte/platform/internal/blogservice"
	"github.com/automaatte/platform/internal/common"
	"github.com/automaatte/platform/internal/notifyservice"
	"github.com/automaatte/platform/internal/storageservice"
)

type application struct {
	config        *Config
	logger        *slog.Logger
	authService   *authservice.AuthService
	blogService   *blogservice.BlogService
	aiClient      *aiservice.Client
	imageStore    *storageservice.ImageStore
	notifyService *notifyservice.NotifyService
	broker        *common.MessageBroker
}

func main() {
	// Initialize the logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load the configuration
	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the database
	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	// Initialize the message broker
	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	// Setup the exchange, queues, and binding keys
	err = common.SetupNotifyExchange(broker)
	if err != nil {
		logger.Error("failed to setup the notify exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	// Initialize the services
	app := &application{
		config:        cfg,
		logger:        logger,
		authService:   authservice.NewAuthService(db, cache),
		blogService:   blogservice.NewBlogService(db, broker),
		aiClient:      aiservice.NewClient(cfg.AIServiceURL, tokenFromContext),
		imageStore:    storageservice.NewImageStore(cfg.UploadDir, cfg.UploadBaseURL, cfg.UploadMaxBytes),
		broker:        broker,
		notifyService: notifyservice.NewNotifyService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailSupportInbox, cfg.MailPort, logger),
	}
	defer app.notifyService.Close()

	// Initialize the consumers
	app.notifyService.SendContactNotifications()
	app.notifyService.SendReplyNotifications()

	// Start the HTTP server
	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
