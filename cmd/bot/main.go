package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/digkill/PhotoSessionBot/internal/admin"
	"github.com/digkill/PhotoSessionBot/internal/config"
	"github.com/digkill/PhotoSessionBot/internal/database"
	"github.com/digkill/PhotoSessionBot/internal/nano"
	"github.com/digkill/PhotoSessionBot/internal/repository"
	"github.com/digkill/PhotoSessionBot/internal/service"
	"github.com/digkill/PhotoSessionBot/internal/storage"
	"github.com/digkill/PhotoSessionBot/internal/telegram"
	"github.com/digkill/PhotoSessionBot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New(cfg.LogDebug)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("telegram bot: %v", err)
	}

	downloader := telegram.NewFileDownloader(botAPI)
	files, err := storage.NewFileStorage(cfg.FacesPath, cfg.SessionsPath, downloader)
	if err != nil {
		log.Fatalf("file storage: %v", err)
	}

	nanoClient := nano.NewClient(cfg, logr)

	userRepo := repository.NewUserRepository(db)
	faceRepo := repository.NewFaceRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	promptRepo := repository.NewPromptRepository(db)

	tokenService := service.NewTokenService(userRepo, logr)
	userService := service.NewUserService(userRepo, cfg.AdminIDs, cfg.StartingTokens, cfg.HourlyLimit)
	examplesService := service.NewExamplesService(cfg.ExamplesPath, telegram.StyleLabels())
	limitService := service.NewLimitService()
	requestBuilder := service.NewRequestBuilder(faceRepo, files, logr)

	var mirror service.ResultMirror
	if cfg.MirrorResults {
		m, err := storage.NewMirror(storage.MirrorConfig{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
			Prefix:        cfg.S3Prefix,
		})
		if err != nil {
			log.Fatalf("result mirror: %v", err)
		}
		mirror = m
	}

	generationService := service.NewGenerationService(
		service.GenerationConfig{
			CostPerSession: cfg.CostPerSession,
			CostPerPrompt:  cfg.CostPerPrompt,
		},
		logr, userRepo, tokenService, sessionRepo, promptRepo,
		requestBuilder, nanoClient, files, examplesService, mirror,
	)

	bot := telegram.NewBot(cfg, botAPI, logr, userService, faceRepo, sessionRepo, tokenService, generationService, limitService, examplesService, files)
	adminServer := admin.NewServer(cfg.AdminListenAddr, cfg.AdminUsername, cfg.AdminPassword, logr, userRepo, tokenService, botAPI)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return adminServer.Run(groupCtx)
	})
	group.Go(func() error {
		return bot.Run(groupCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("shutdown with error", "err", err)
	}
}
