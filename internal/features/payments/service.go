// Package payments — service.go содержит бизнес-логику завершения выплат.
// Сервис обрабатывает список ID поэлементно и всегда возвращает
// структурированный результат: частичные ошибки не прерывают обработку.
package payments

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"admin-bot/internal/common"
)

// Service управляет завершением выплат.
type Service struct {
	store Store
}

// NewService создаёт сервис выплат.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CompleteBatch завершает список выплат по их ID.
//
// Каждый ID обрабатывается независимо, в своей транзакции:
// ошибка или отсутствие одной выплаты не влияет на остальные.
// Дубликаты в списке обрабатываются по порядку — второе вхождение
// видит закоммиченное состояние первого и отчитывается как
// "уже завершена" без повторного начисления.
//
// Success == false только для пустого списка (транзакции не открываются).
func (s *Service) CompleteBatch(ctx context.Context, paymentIDs []string) *BatchResult {
	if len(paymentIDs) == 0 {
		return &BatchResult{
			Success: false,
			Message: common.ErrNoPaymentIDs.Error(),
		}
	}

	result := &BatchResult{
		Success: true,
		Items:   make([]ItemResult, 0, len(paymentIDs)),
	}
	result.Summary.Total = len(paymentIDs)

	for _, id := range paymentIDs {
		wasCompleted, err := s.store.CompleteOne(ctx, id)
		switch {
		case errors.Is(err, common.ErrPaymentNotFound):
			result.Items = append(result.Items, ItemResult{
				PaymentID: id,
				Status:    ItemNotFound,
			})
			result.Summary.NotFound++

		case err != nil:
			// Текст ошибки сохраняем для диагностики — оператору он и нужен
			log.WithError(err).WithField("payment_id", id).Error("Ошибка завершения выплаты")
			result.Items = append(result.Items, ItemResult{
				PaymentID: id,
				Status:    ItemError,
				Error:     err.Error(),
			})
			result.Summary.Errors++

		default:
			result.Items = append(result.Items, ItemResult{
				PaymentID:           id,
				Status:              ItemCompleted,
				WasAlreadyCompleted: wasCompleted,
			})
			result.Summary.Completed++
		}
	}

	result.Message = fmt.Sprintf(
		"Обработано %d %s: %d завершено, %d не найдено, %d с ошибками.",
		result.Summary.Total, common.PluralizePayments(result.Summary.Total),
		result.Summary.Completed, result.Summary.NotFound, result.Summary.Errors,
	)
	return result
}
