package main

import (
	"fmt"
	"net/rpc"
	"time"

	"github.com/spf13/pflag"

	"github.com/wfunc/drawbot/config"
	"github.com/wfunc/drawbot/game"
	"github.com/wfunc/drawbot/logger"
	"github.com/wfunc/drawbot/monitor"
	"github.com/wfunc/drawbot/persistence"
	drawbot_rpc "github.com/wfunc/drawbot/rpc"
	"github.com/wfunc/drawbot/server"
	"github.com/wfunc/drawbot/services"
	"github.com/wfunc/drawbot/telegram"
	"github.com/wfunc/drawbot/timer"
	"github.com/wfunc/drawbot/words"
)

func main() {
	configPath := pflag.String("config", ".", "directory containing config.yaml")
	pflag.Parse()

	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	db, err := persistence.NewGormPostgreSQL(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
	)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Log.Info("Database connection successful.")

	// Word lists
	provider, err := words.NewFileProvider(cfg.Words.Files, cfg.Words.DefaultLocale, cfg.Words.DefaultWord)
	if err != nil {
		logger.Log.Fatalf("Failed to load word lists: %v", err)
	}

	// Telegram gateway + identity verification
	bot := telegram.NewBot(cfg.Bot.Token, cfg.Bot.APIBase)
	verifier := telegram.NewInitDataVerifier(cfg.Bot.Token)

	// Coordinator
	coordinator := game.NewCoordinator(db, bot, provider, verifier, cfg.Bot.WebAppURL, cfg.Words.DefaultLocale)

	// Metrics
	var mon *monitor.Monitor
	if cfg.Server.MetricsAddress != "" {
		mon = monitor.NewMonitor("drawbot")
		mon.StartServer(cfg.Server.MetricsAddress)
		coordinator.SetMonitor(mon)

		scheduler := timer.NewScheduler()
		scheduler.Schedule(0, time.Minute, func() {
			if count, err := db.CountActiveGames(); err == nil {
				mon.SetActiveGames(count)
			}
		})
	}

	// RPC ops surface
	if cfg.Server.RPCAddress != "" {
		rpcServer, err := drawbot_rpc.NewServer(cfg.Server.RPCAddress)
		if err != nil {
			logger.Log.Fatalf("Failed to create RPC server: %v", err)
		}
		rpc.Register(drawbot_rpc.NewAdminService(coordinator))
		go rpcServer.Start()
		defer rpcServer.Stop()
	}

	// Webhook registration
	webhookURL := fmt.Sprintf("%s/bot/%s", cfg.Server.PublicURL, cfg.Bot.WebhookSecret)
	if err := bot.SetWebhook(webhookURL, cfg.Bot.APISecretToken); err != nil {
		logger.Log.Fatalf("Failed to set webhook: %v", err)
	}

	// HTTP surface
	throttle := server.NewThrottle(
		time.Duration(cfg.Server.ThrottleWindowSec)*time.Second,
		cfg.Server.ThrottleLimit,
	)
	gameServer := server.NewGameServer(
		cfg.Server.HTTPAddress,
		coordinator,
		services.NewUserService(db),
		bot,
		cfg.Bot.WebhookSecret,
		cfg.Bot.APISecretToken,
		throttle,
	)
	if mon != nil {
		gameServer.SetMonitor(mon)
	}

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
