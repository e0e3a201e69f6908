package main

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rryowa/campus_session/internal/api"
	"github.com/rryowa/campus_session/internal/controller"
	"github.com/rryowa/campus_session/internal/idp"
	"github.com/rryowa/campus_session/internal/storage"
	"github.com/rryowa/campus_session/internal/storage/memory"
	"github.com/rryowa/campus_session/internal/storage/redis"
	"github.com/rryowa/campus_session/internal/util"
)

const defaultDemoPassword = "password"

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger()

	var sessions storage.SessionRepository = memory.NewSessionRepository(logger)
	if os.Getenv("REDIS_ADDR") != "" {
		redisClient, redisCleanup, err := util.NewRedisClient(ctx, logger, util.NewRedisConfig())
		if err != nil {
			logger.Fatal(zap.Error(err))
		}
		defer redisCleanup()
		sessions = redis.NewSessionRepository(redisClient)
	}

	password := os.Getenv("DEMO_PASSWORD")
	if password == "" {
		password = defaultDemoPassword
	}

	directory := idp.NewDirectory()
	if err := idp.SeedDemo(directory, password); err != nil {
		logger.Fatal(zap.Error(err))
	}
	logger.Infow("demo student seeded", "username", idp.DemoUsername)

	tokenService := idp.NewTokenService(util.NewTokenConfig(), sessions)
	ctrl := controller.NewController(logger, tokenService, directory)

	apiServer := api.NewAPI(ctrl, tokenService, prometheus.DefaultGatherer, logger, util.NewServerConfig())
	apiServer.Run(ctx)
}
