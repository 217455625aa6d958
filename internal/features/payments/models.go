// Package payments реализует завершение выплат операторами.
// models.go описывает статусы выплат и структуры результатов.
package payments

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status — статус выплаты в таблице "Payments" (PostgreSQL enum).
type Status string

// Допустимые статусы выплат. Список фиксирован схемой платформы.
const (
	StatusPending      Status = "pending"
	StatusProcessing   Status = "processing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusCancelled    Status = "cancelled"
	StatusRetryPending Status = "retry_pending"
	StatusUnclaimed    Status = "unclaimed"
)

// ParseStatus преобразует строку из базы в Status.
// Неизвестное значение — жёсткая ошибка: если в колонке лежит статус,
// которого нет в enum, значит схема и код разошлись, и начислять деньги
// поверх этого нельзя.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed,
		StatusCancelled, StatusRetryPending, StatusUnclaimed:
		return Status(s), nil
	}
	return "", fmt.Errorf("неизвестный статус выплаты: %q", s)
}

// Payment представляет выплату пользователю за работу по оценке фотографий.
// Выплаты создаёт основная платформа, бот их только завершает.
type Payment struct {
	ID          string          `db:"id"`     // UUID выплаты
	UserID      string          `db:"userId"` // UUID владельца
	Amount      decimal.Decimal `db:"amount"`
	NetAmount   decimal.Decimal `db:"netAmount"`
	TransferFee decimal.Decimal `db:"transferFee"`
	Status      Status          `db:"status"`
	ProcessedAt *time.Time      `db:"processedAt"` // Ставится только при завершении
	CreatedAt   time.Time       `db:"createdAt"`
	UpdatedAt   time.Time       `db:"updatedAt"`
}

// ItemStatus — итог обработки одного ID из списка.
type ItemStatus string

const (
	ItemCompleted ItemStatus = "completed"
	ItemNotFound  ItemStatus = "not_found"
	ItemError     ItemStatus = "error"
)

// ItemResult — результат обработки одной выплаты.
type ItemResult struct {
	PaymentID           string
	Status              ItemStatus
	WasAlreadyCompleted bool   // true = повторное завершение, деньги не начислялись
	Error               string // Текст ошибки при Status == ItemError
}

// Summary — агрегированные счётчики по всему списку.
type Summary struct {
	Total     int
	Completed int
	NotFound  int
	Errors    int
}

// BatchResult — структурированный результат завершения списка выплат.
// Success == false только при структурно некорректном входе (пустой список);
// частичные ошибки по элементам дают Success == true, смотреть надо Items/Summary.
type BatchResult struct {
	Success bool
	Message string
	Items   []ItemResult
	Summary Summary
}
