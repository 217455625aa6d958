// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики
// и собирает всё в один объект Bot. Миграций нет: схема принадлежит
// основной платформе оценки фотографий.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"admin-bot/internal/bot"
	"admin-bot/internal/config"
	"admin-bot/internal/db/postgres"
	"admin-bot/internal/features/payments"
	"admin-bot/internal/features/repair"
	"admin-bot/internal/features/roster"
	"admin-bot/internal/features/users"
	"admin-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Репозитории ===
	usersRepo := users.NewRepository(pool)
	paymentsRepo := payments.NewRepository(pool)
	repairRepo := repair.NewRepository(pool)

	// === 4. Сервисы и реестр админов ===
	paymentsService := payments.NewService(paymentsRepo)
	repairService := repair.NewService(repairRepo)
	adminRoster := roster.NewManager(cfg.SysadminIDs)

	// === 5. Обработчики ===
	paymentsHandler := payments.NewHandler(paymentsService, botAPI)
	repairHandler := repair.NewHandler(repairService, usersRepo, botAPI)
	rosterHandler := roster.NewHandler(adminRoster, cfg.AdminPasswordHash, botAPI)

	// === 6. Собираем бота ===
	b := bot.New(botAPI, cfg, adminRoster, paymentsHandler, repairHandler, rosterHandler)

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg.AppTimezone, paymentsRepo, usersRepo, cfg.SysadminIDs, b.SendMessageToUser)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}
