// Package payments — repository.go выполняет операции с таблицами "Payments" и "Users".
// Каждое завершение выплаты — отдельная транзакция БД: ошибка по одному ID
// не должна откатывать уже завершённые.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"admin-bot/internal/common"
)

// Store — то, что нужно сервису от хранилища.
// Вынесено в интерфейс, чтобы сервис тестировался без живой БД.
type Store interface {
	// CompleteOne завершает одну выплату в собственной транзакции.
	// Возвращает true, если выплата уже была завершена (повторный вызов).
	// Если выплаты нет — common.ErrPaymentNotFound.
	CompleteOne(ctx context.Context, paymentID string) (wasAlreadyCompleted bool, err error)
}

// Repository предоставляет методы для работы с выплатами.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий выплат.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CompleteOne завершает одну выплату:
//  1. Читает строку с блокировкой FOR UPDATE — конкурентные завершения
//     одного ID сериализуются на уровне строки.
//  2. Запоминает, была ли выплата уже завершена.
//  3. Безусловно ставит status = completed и штампует processedAt
//     (повторное завершение — осознанная идемпотентная перезапись, не no-op).
//  4. Только если прежний статус НЕ был completed — прибавляет amount
//     к "totalPaidOut" владельца. Арифметика на NUMERIC прямо в SQL,
//     без плавающей точки.
func (r *Repository) CompleteOne(ctx context.Context, paymentID string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		userID    string
		amount    decimal.Decimal
		statusRaw string
	)
	err = tx.QueryRow(ctx, `
		SELECT "userId", amount, status::text
		FROM "Payments"
		WHERE id = $1
		FOR UPDATE
	`, paymentID).Scan(&userID, &amount, &statusRaw)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, common.ErrPaymentNotFound
	}
	if err != nil {
		return false, fmt.Errorf("ошибка чтения выплаты: %w", err)
	}

	status, err := ParseStatus(statusRaw)
	if err != nil {
		return false, err
	}
	wasCompleted := status == StatusCompleted

	now := time.Now().UTC()
	_, err = tx.Exec(ctx, `
		UPDATE "Payments"
		SET status = $2, "processedAt" = $3, "updatedAt" = $3
		WHERE id = $1
	`, paymentID, string(StatusCompleted), now)
	if err != nil {
		return false, fmt.Errorf("ошибка обновления выплаты: %w", err)
	}

	if !wasCompleted {
		_, err = tx.Exec(ctx, `
			UPDATE "Users"
			SET "totalPaidOut" = "totalPaidOut" + $2, "updatedAt" = $3
			WHERE id = $1
		`, userID, amount, now)
		if err != nil {
			return false, fmt.Errorf("ошибка начисления totalPaidOut: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("ошибка коммита: %w", err)
	}
	return wasCompleted, nil
}

// CountByStatus возвращает количество выплат по каждому статусу.
// Используется в ежедневном дайджесте для сисадминов.
func (r *Repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status::text, COUNT(*) FROM "Payments" GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта выплат: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			raw   string
			count int
		)
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		status, err := ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
