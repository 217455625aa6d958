// Package roster — handlers.go обрабатывает команды управления админами:
// /add_admin, /remove_admin, /list_admins (только сисадмин) и /login.
// Поддерживается форма с аргументом (@username) и форма реплаем на сообщение.
package roster

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Handler обрабатывает команды реестра админов.
type Handler struct {
	manager           *Manager
	adminPasswordHash string // пустая строка = /login отключён
	bot               *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик реестра.
func NewHandler(manager *Manager, adminPasswordHash string, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{manager: manager, adminPasswordHash: adminPasswordHash, bot: bot}
}

// resolveTarget определяет username-цель команды: из реплая или из аргумента.
// Возвращает пустую строку и false, если определить не удалось
// (сообщение об ошибке уже отправлено).
func (h *Handler) resolveTarget(chatID int64, cmd string, args []string, replyUsername string, isReply bool) (string, bool) {
	// Приоритет 1: реплай на сообщение пользователя
	if isReply {
		if replyUsername == "" {
			h.sendMessage(chatID,
				"❌ У пользователя, на которого вы ответили, нет username.\n"+
					fmt.Sprintf("Используйте /%s @username или попросите его установить username.", cmd))
			return "", false
		}
		log.WithField("username", replyUsername).Infof("Username взят из реплая для /%s", cmd)
		return replyUsername, true
	}

	// Приоритет 2: аргумент @username
	if len(args) != 1 {
		h.sendMessage(chatID,
			"❌ Укажите username или ответьте на сообщение.\n"+
				fmt.Sprintf("Использование:\n- /%s @username\n- Реплай на сообщение + /%s", cmd, cmd))
		return "", false
	}

	arg := strings.TrimSpace(args[0])
	if !strings.HasPrefix(arg, "@") {
		h.sendMessage(chatID,
			fmt.Sprintf("❌ Username должен начинаться с @.\nИспользование: /%s @username", cmd))
		return "", false
	}
	return strings.TrimPrefix(arg, "@"), true
}

// HandleAddAdmin — команда /add_admin (только сисадмин).
func (h *Handler) HandleAddAdmin(chatID int64, args []string, replyUsername string, isReply bool) {
	username, ok := h.resolveTarget(chatID, "add_admin", args, replyUsername, isReply)
	if !ok {
		return
	}

	if h.manager.Add(username) {
		h.sendMessage(chatID, fmt.Sprintf("✅ @%s добавлен в админы.", Normalize(username)))
	} else {
		h.sendMessage(chatID, fmt.Sprintf("⚠️ @%s уже админ.", Normalize(username)))
	}
}

// HandleRemoveAdmin — команда /remove_admin (только сисадмин).
func (h *Handler) HandleRemoveAdmin(chatID int64, args []string, replyUsername string, isReply bool) {
	username, ok := h.resolveTarget(chatID, "remove_admin", args, replyUsername, isReply)
	if !ok {
		return
	}

	if h.manager.Remove(username) {
		h.sendMessage(chatID, fmt.Sprintf("✅ @%s удалён из админов.", Normalize(username)))
	} else {
		h.sendMessage(chatID, fmt.Sprintf("⚠️ @%s не является админом.", Normalize(username)))
	}
}

// HandleListAdmins — команда /list_admins (только сисадмин).
func (h *Handler) HandleListAdmins(chatID int64) {
	var sb strings.Builder
	sb.WriteString("👥 Список админов:\n\n")
	for _, id := range h.manager.SysadminIDs() {
		sb.WriteString(fmt.Sprintf("Сисадмин: user ID %d\n", id))
	}

	admins := h.manager.List()
	if len(admins) > 0 {
		sb.WriteString("\nСуб-админы (по username):\n")
		for _, username := range admins {
			sb.WriteString(fmt.Sprintf("  • @%s\n", username))
		}
	} else {
		sb.WriteString("\nСуб-админов пока нет.")
	}

	h.sendMessage(chatID, sb.String())
}

// HandleLogin — команда /login <пароль> (только в личке).
// Успешная проверка пароля делает пользователя суб-админом до рестарта.
func (h *Handler) HandleLogin(chatID int64, username string, args []string) {
	if h.adminPasswordHash == "" {
		h.sendMessage(chatID, "❌ Вход по паролю отключён.")
		return
	}
	if username == "" {
		h.sendMessage(chatID, "❌ Для входа нужен установленный username.")
		return
	}
	if len(args) != 1 {
		h.sendMessage(chatID, "❌ Использование: /login <пароль>")
		return
	}

	if !VerifyPassword(args[0], h.adminPasswordHash) {
		log.WithField("username", username).Warn("Неудачная попытка /login")
		h.sendMessage(chatID, "❌ Неверный пароль.")
		return
	}

	if h.manager.Add(username) {
		log.WithField("username", username).Info("Суб-админ добавлен через /login")
		h.sendMessage(chatID, "✅ Вы добавлены в админы до перезапуска бота.")
	} else {
		h.sendMessage(chatID, "⚠️ Вы уже админ.")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
