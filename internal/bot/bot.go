// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go запускает polling, парсит команды и маршрутизирует их к обработчикам
// с проверкой прав: админские команды — только для сисадминов и суб-админов.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"admin-bot/internal/bot/middleware"
	"admin-bot/internal/config"
	"admin-bot/internal/features/payments"
	"admin-bot/internal/features/repair"
	"admin-bot/internal/features/roster"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	// Проверка прав — через интерфейс, бот не знает деталей реестра
	auth roster.Authorizer

	rateLimiter *middleware.RateLimiter

	paymentsHandler *payments.Handler
	repairHandler   *repair.Handler
	rosterHandler   *roster.Handler

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	auth roster.Authorizer,
	paymentsHandler *payments.Handler,
	repairHandler *repair.Handler,
	rosterHandler *roster.Handler,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 16
	}

	return &Bot{
		api:             api,
		cfg:             cfg,
		auth:            auth,
		rateLimiter:     middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		paymentsHandler: paymentsHandler,
		repairHandler:   repairHandler,
		rosterHandler:   rosterHandler,
		parser:          NewCommandParser(),
		inflight:        make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает команды...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.Message == nil || update.Message.Text == "" || update.Message.From == nil {
		return
	}

	message := update.Message
	middleware.LogMessage(message)

	// Rate limiting
	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}

	log.WithFields(log.Fields{
		"cmd":     cmd,
		"args_n":  len(args),
		"user_id": message.From.ID,
	}).Debug("parsed command")

	b.routeCommand(ctx, message, cmd, args)
}

// routeCommand маршрутизирует команду к нужному обработчику.
// Проверка прав — здесь, обработчики про авторизацию не знают.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string) {
	chatID := message.Chat.ID
	userID := message.From.ID
	username := message.From.UserName

	switch cmd {
	case "start":
		b.sendMessage(chatID, b.startMessage(userID, username))

	case "help":
		b.sendMessage(chatID, b.helpMessage(userID, username))

	case "complete_payment":
		if !b.requireAdmin(chatID, userID, username) {
			return
		}
		b.paymentsHandler.HandleCompletePayment(ctx, chatID, args)

	case "reset_unblock":
		if !b.requireAdmin(chatID, userID, username) {
			return
		}
		b.repairHandler.HandleResetUnblock(ctx, chatID, args)

	case "add_admin":
		if !b.requireSysadmin(chatID, userID) {
			return
		}
		replyUsername, isReply := replyTarget(message)
		b.rosterHandler.HandleAddAdmin(chatID, args, replyUsername, isReply)

	case "remove_admin":
		if !b.requireSysadmin(chatID, userID) {
			return
		}
		replyUsername, isReply := replyTarget(message)
		b.rosterHandler.HandleRemoveAdmin(chatID, args, replyUsername, isReply)

	case "list_admins":
		if !b.requireSysadmin(chatID, userID) {
			return
		}
		b.rosterHandler.HandleListAdmins(chatID)

	case "login":
		// Пароль — только в личке, в группе он останется в истории
		if !message.Chat.IsPrivate() {
			b.sendMessage(chatID, "❌ /login работает только в личных сообщениях.")
			return
		}
		b.rosterHandler.HandleLogin(chatID, username, args)
	}
}

// isAdmin: сисадмин (по user ID) или суб-админ (по username).
func (b *Bot) isAdmin(userID int64, username string) bool {
	return b.auth.IsSysadmin(userID) || b.auth.IsAdmin(username)
}

func (b *Bot) requireAdmin(chatID, userID int64, username string) bool {
	if b.isAdmin(userID, username) {
		return true
	}
	b.sendMessage(chatID, "❌ Доступ запрещён. Требуются права администратора.")
	return false
}

func (b *Bot) requireSysadmin(chatID, userID int64) bool {
	if b.auth.IsSysadmin(userID) {
		return true
	}
	b.sendMessage(chatID, "❌ Доступ запрещён. Требуются права системного администратора.")
	return false
}

// replyTarget достаёт username из сообщения, на которое ответили.
func replyTarget(message *tgbotapi.Message) (string, bool) {
	if message.ReplyToMessage == nil || message.ReplyToMessage.From == nil {
		return "", false
	}
	return message.ReplyToMessage.From.UserName, true
}

func (b *Bot) startMessage(userID int64, username string) string {
	role := "Пользователь"
	switch {
	case b.auth.IsSysadmin(userID):
		role = "Системный администратор"
	case b.auth.IsAdmin(username):
		role = "Администратор"
	}

	display := username
	if display == "" {
		display = "оператор"
	}

	msg := fmt.Sprintf("👋 Привет, %s!\n\nВаша роль: %s\nUser ID: %d\n\n/help — справка по командам\n", display, role, userID)
	if b.isAdmin(userID, username) {
		msg += "\nАдминские команды:\n" +
			"/complete_payment <paymentIds> — завершить выплату(ы)\n" +
			"/reset_unblock <email> <количество> — сбросить оценки и разблокировать\n" +
			"/add_admin <@username> — добавить админа (сисадмин)\n" +
			"/remove_admin <@username> — удалить админа (сисадмин)\n" +
			"/list_admins — список админов (сисадмин)\n"
	}
	return msg
}

func (b *Bot) helpMessage(userID int64, username string) string {
	if !b.isAdmin(userID, username) {
		return "📚 Доступные команды:\n\n/start — запустить бота\n/help — эта справка\n"
	}

	var sb strings.Builder
	sb.WriteString("📚 Админские команды:\n\n")
	sb.WriteString("/complete_payment <paymentIds>\n")
	sb.WriteString("  Завершить одну или несколько выплат.\n")
	sb.WriteString("  Пример: /complete_payment id-1 id-2 id-3\n\n")
	sb.WriteString("/reset_unblock <email> <количество>\n")
	sb.WriteString("  Сбросить последние X фотографий пользователя, списать заработок и разблокировать.\n")
	sb.WriteString("  Пример: /reset_unblock test11@example.com 5\n\n")
	sb.WriteString("/add_admin [@username]\n")
	sb.WriteString("  Добавить суб-админа (только сисадмин). Можно реплаем на сообщение.\n\n")
	sb.WriteString("/remove_admin [@username]\n")
	sb.WriteString("  Удалить суб-админа (только сисадмин). Можно реплаем.\n\n")
	sb.WriteString("/list_admins\n")
	sb.WriteString("  Список всех админов (только сисадмин).\n")
	return sb.String()
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessageToUser отправляет сообщение пользователю (для дайджеста).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	}
}

// CommandParser парсит команды с префиксом /.
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// Суффикс @botname ("/help@photo_admin_bot") отрезается.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
