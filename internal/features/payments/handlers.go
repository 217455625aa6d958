// Package payments — handlers.go обрабатывает команду /complete_payment.
package payments

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Handler обрабатывает команды по выплатам.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик выплат.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleCompletePayment — команда /complete_payment <id1> [id2] ...
// Валидирует формат UUID до обращения к сервису: сервису формат не важен,
// но оператору полезно сразу увидеть опечатку.
func (h *Handler) HandleCompletePayment(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID,
			"❌ Укажите ID выплат.\n"+
				"Использование: /complete_payment <paymentId1> [paymentId2] ...\n"+
				"Пример: /complete_payment abc-123-def-456 xyz-789-uvw-012")
		return
	}

	var invalid []string
	for _, id := range args {
		if _, err := uuid.Parse(id); err != nil {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		h.sendMessage(chatID, fmt.Sprintf(
			"❌ Некорректный формат ID: %s\nID выплат должны быть валидными UUID.",
			strings.Join(invalid, ", ")))
		return
	}

	result := h.service.CompleteBatch(ctx, args)
	if !result.Success {
		h.sendMessage(chatID, "❌ "+result.Message)
		return
	}

	var sb strings.Builder
	sb.WriteString("✅ " + result.Message + "\n\n")
	sb.WriteString("Сводка:\n")
	sb.WriteString(fmt.Sprintf("  • Всего: %d\n", result.Summary.Total))
	sb.WriteString(fmt.Sprintf("  • Завершено: %d\n", result.Summary.Completed))
	sb.WriteString(fmt.Sprintf("  • Не найдено: %d\n", result.Summary.NotFound))
	sb.WriteString(fmt.Sprintf("  • Ошибок: %d\n", result.Summary.Errors))

	if len(result.Items) > 0 {
		sb.WriteString("\nДетали:\n")
		for _, item := range result.Items {
			switch item.Status {
			case ItemCompleted:
				already := ""
				if item.WasAlreadyCompleted {
					already = " (уже была завершена)"
				}
				sb.WriteString(fmt.Sprintf("  ✅ %s%s\n", item.PaymentID, already))
			case ItemNotFound:
				sb.WriteString(fmt.Sprintf("  ⚠️ %s — не найдена\n", item.PaymentID))
			case ItemError:
				sb.WriteString(fmt.Sprintf("  ❌ %s — ошибка: %s\n", item.PaymentID, item.Error))
			}
		}
	}

	h.sendMessage(chatID, sb.String())
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
