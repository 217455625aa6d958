// Package repair — handlers.go обрабатывает команду /reset_unblock.
// Резолв email → UUID пользователя — забота обработчика, сервису нужен
// уже разрешённый идентификатор.
package repair

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"admin-bot/internal/common"
	"admin-bot/internal/features/users"
)

// Handler обрабатывает команды сброса-разблокировки.
type Handler struct {
	service   *Service
	usersRepo *users.Repository
	bot       *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик сброса-разблокировки.
func NewHandler(service *Service, usersRepo *users.Repository, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, usersRepo: usersRepo, bot: bot}
}

const resetUsage = "Использование: /reset_unblock <email> <количество>\n" +
	"Пример: /reset_unblock test11@example.com 5"

// HandleResetUnblock — команда /reset_unblock <email> <количество>.
func (h *Handler) HandleResetUnblock(ctx context.Context, chatID int64, args []string) {
	if len(args) != 2 {
		h.sendMessage(chatID, "❌ Укажите email пользователя и количество фотографий.\n"+resetUsage)
		return
	}

	email := strings.TrimSpace(args[0])
	checkAmount, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil || checkAmount <= 0 {
		h.sendMessage(chatID, "❌ Некорректное количество. Нужно положительное целое число.\n"+resetUsage)
		return
	}

	user, err := h.usersRepo.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrUserNotFound) {
		h.sendMessage(chatID, fmt.Sprintf("❌ Пользователь с email %s не найден", email))
		return
	}
	if err != nil {
		log.WithError(err).Error("Ошибка поиска пользователя")
		h.sendMessage(chatID, "❌ Ошибка при поиске пользователя: "+err.Error())
		return
	}

	result, err := h.service.ResetUnblock(ctx, user.ID, checkAmount)
	if err != nil {
		h.sendMessage(chatID, "❌ Ошибка при сбросе пользователя: "+err.Error())
		return
	}

	if result.NothingToReset {
		h.sendMessage(chatID, fmt.Sprintf("⚠️ У пользователя %s нет оценок. Нечего сбрасывать.", email))
		return
	}

	var sb strings.Builder
	sb.WriteString("✅ Пользователь сброшен и разблокирован!\n\n")
	sb.WriteString(fmt.Sprintf("Пользователь: %s\n", email))
	sb.WriteString(fmt.Sprintf("ID: %s\n", user.ID))
	sb.WriteString(fmt.Sprintf("Затронуто фотографий: %d\n", result.PhotoCount))
	sb.WriteString(fmt.Sprintf("Списано заработка: %s\n", common.FormatMoney(result.EarningsSubtracted)))
	sb.WriteString(fmt.Sprintf("Удалено оценок: %d\n", result.RatingsDeleted))
	// Полный список в результате, в чат — первые 5
	sb.WriteString(fmt.Sprintf("ID фотографий: %s", common.TruncateIDs(result.AffectedPhotoIDs, 5)))

	h.sendMessage(chatID, sb.String())
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
