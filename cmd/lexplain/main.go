package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/betterhyq/LexPlain/pkg/config"
	"github.com/betterhyq/LexPlain/pkg/dependency_container"
	infraLogger "github.com/betterhyq/LexPlain/pkg/infra/logger"
	"github.com/betterhyq/LexPlain/pkg/server"
	"github.com/betterhyq/LexPlain/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, logWriter, err := infraLogger.NewLogger(infraLogger.Options{
		Name: "api",
		Dir:  os.Getenv("LOG_DIR"),
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logWriter.Close() }()

	if err := config.Load(os.Getenv("CONFIG_PATH")); err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("failed to build dependencies: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	container.Start(ctx, cfg)

	srv := server.NewAPIServer(server.APIServerDI{
		Config:  cfg,
		Logger:  logger,
		Routers: container.Routers(),
	})

	logger.WithFields(logrus.Fields{
		"version": version.Version,
		"store":   cfg.Store.Driver,
		"limit":   cfg.RateLimit.Limit,
		"window":  cfg.RateLimit.Window.String(),
	}).Info("starting " + version.AppName)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
	}
	if err := container.Close(); err != nil {
		logger.WithError(err).Warn("error closing counter store")
	}
	logger.Info("server gracefully stopped")
}
