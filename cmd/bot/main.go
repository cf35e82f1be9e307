// Package main is the entry point for the CoalBot application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/THEREALVANHEL/coalbot/internal/analytics"
	"github.com/THEREALVANHEL/coalbot/internal/backup"
	"github.com/THEREALVANHEL/coalbot/internal/commands"
	"github.com/THEREALVANHEL/coalbot/internal/economy"
	"github.com/THEREALVANHEL/coalbot/internal/events"
	"github.com/THEREALVANHEL/coalbot/internal/ratelimit"
	"github.com/THEREALVANHEL/coalbot/internal/router"
	"github.com/THEREALVANHEL/coalbot/internal/security"
	"github.com/THEREALVANHEL/coalbot/internal/tasks"
	"github.com/THEREALVANHEL/coalbot/internal/tickets"
	"github.com/THEREALVANHEL/coalbot/pkg/config"
	"github.com/THEREALVANHEL/coalbot/pkg/database"
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/THEREALVANHEL/coalbot/pkg/mqtt"
	"github.com/THEREALVANHEL/coalbot/pkg/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	if cfg.DebugMode {
		log.SetMinLevel(logger.LevelDebug)
	}

	logger.System("Starting CoalBot...", "Main")
	logger.Info(fmt.Sprintf("Working directory: %s", getCurrentDir()), "Main")

	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
	})

	db, err := database.Init(cfg.MongoDBURL, cfg.DBName, cfg.DBPoolSize)
	if err != nil {
		logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
		// Continue without database, it will attempt to reconnect.
	}
	defer func() {
		if db != nil {
			_ = db.Disconnect()
		}
	}()

	mongoStore := database.NewMongoStore(db, cfg.StartingCoins)
	if err := mongoStore.EnsureIndexes(context.Background()); err != nil {
		logger.Warn(fmt.Sprintf("Error creating indexes: %v", err), "Main")
	}

	cache := database.NewUserCache(cfg.CacheTTL, nil)
	store := database.NewCachedStore(mongoStore, cache)

	limits := ratelimit.DefaultLimits()
	limits["xp"] = ratelimit.Limit{MaxRequests: 1, Window: cfg.XPCooldown}
	limits["daily"] = ratelimit.Limit{MaxRequests: 1, Window: cfg.DailyCooldown}
	limiter := ratelimit.NewLimiter(limits, nil)

	sec := security.NewService(limiter, nil)
	sec.SetTransferCap(cfg.TransferCap)
	collector := analytics.NewCollector(store, nil)
	backups := backup.NewManager(mongoStore, cfg.BackupDir, cfg.MaxBackups, nil)

	eco := economy.NewService(store, limiter, nil, nil, economy.Config{
		StartingCoins:       cfg.StartingCoins,
		MaxBankBalance:      cfg.MaxBankBalance,
		MaxSavingsBalance:   cfg.MaxSavingsBalance,
		SavingsInterestRate: cfg.SavingsInterestRate,
		DailyWindow:         cfg.DailyCooldown,
		WorkCooldown:        cfg.WorkCooldown,
		XPCooldown:          cfg.XPCooldown,
	})

	features := map[string]bool{
		"economy": cfg.EnableEconomy,
		"pets":    cfg.EnablePets,
		"stocks":  cfg.EnableStocks,
	}
	rtr := router.New(sec, limiter, collector, features)

	services := &discord.Services{
		Store:     store,
		Economy:   eco,
		Security:  sec,
		Analytics: collector,
		Backups:   backups,
		Router:    rtr,
	}

	discordClient, err = discord.Init(cfg.BotToken, services)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// The ticket service needs the live session for channel management,
	// so it is wired after the client exists.
	platform := discord.NewSessionPlatform(discordClient.Session)
	auth := tickets.NewAuthorizer(cfg.AdminRoleID, cfg.StaffRoleNames)
	services.Tickets = tickets.NewService(store, platform, auth, cfg.TicketCategoryID, nil)

	commands.RegisterAll(discordClient)
	events.RegisterAll(discordClient)

	if cfg.EnableWeb {
		webServer := web.Init()
		web.SetupRoutes(webServer, collector, backups)
		webServer.StartAsync(cfg.Port)
	}

	var mqttClient *mqtt.MqttCommunicator
	if cfg.EnableMQTT {
		mqttClientID := "coalbot"
		if !cfg.IsProd() {
			mqttClientID = "coalbot_canary"
		}
		mqttClient = mqtt.Init(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, mqttClientID)
		defer mqttClient.Destroy()
	}

	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		_ = discordClient.Stop()
	}()

	scheduler := tasks.NewScheduler()
	registerTasks(scheduler, cfg, store, eco, sec, collector, backups, cache, platform, mqttClient, discordClient)
	scheduler.Start()
	defer scheduler.Stop()

	logger.Success("CoalBot started successfully!", "Main")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Shutting down CoalBot...", "Main")
}

// registerTasks wires the background loops into the scheduler.
func registerTasks(
	scheduler *tasks.Scheduler,
	cfg *config.Config,
	store database.Store,
	eco *economy.Service,
	sec *security.Service,
	collector *analytics.Collector,
	backups *backup.Manager,
	cache *database.UserCache,
	platform *discord.SessionPlatform,
	mqttClient *mqtt.MqttCommunicator,
	client *discord.ExtendedClient,
) {
	taskList := []tasks.Task{
		{Name: "backup", Spec: fmt.Sprintf("@every %s", cfg.BackupInterval), Run: tasks.NewBackupTask(backups).Run},
		{Name: "savings-interest", Spec: tasks.InterestEvery, Run: tasks.NewInterestTask(store, eco).Run},
		{Name: "cache-sweep", Spec: tasks.CacheSweepEvery, Run: tasks.NewCacheSweepTask(cache).Run},
		{Name: "security-audit", Spec: tasks.AuditEvery, Run: tasks.NewAuditTask(sec).Run},
		{Name: "perf-sample", Spec: tasks.PerfSampleEvery, Run: tasks.NewPerfTask(store, collector).Run},
		{Name: "job-activity", Spec: tasks.JobSweepEvery, Run: tasks.NewJobSweep(store, platform, nil).Run},
		{Name: "purchase-expiry", Spec: tasks.ExpirySweepEvery, Run: tasks.NewExpirySweepTask(store, eco).Run},
	}

	if mqttClient != nil {
		taskList = append(taskList, tasks.Task{
			Name: "mqtt-status",
			Spec: "@every 1m",
			Run: func(ctx context.Context) error {
				return mqttClient.PublishStatus(client.IsReady(), collector.Uptime())
			},
		})
	}

	for _, t := range taskList {
		if err := scheduler.Add(t); err != nil {
			logger.Error(fmt.Sprintf("Error scheduling task: %v", err), "Main")
		}
	}
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
