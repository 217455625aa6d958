// Package users работает с пользователями платформы оценки фотографий.
// models.go описывает структуру для чтения таблицы "Users".
// Пользователей создаёт основная платформа — бот их только читает и мутирует.
package users

import (
	"time"

	"github.com/shopspring/decimal"
)

// User представляет пользователя платформы.
// Денежные поля — NUMERIC(10,2) в базе, в Go — decimal, чтобы не было
// ошибок плавающей точки при повторных операциях.
type User struct {
	ID                        string          `db:"id"`                        // UUID (строкой, как хранит платформа)
	Email                     string          `db:"email"`                     // Уникальный email
	CurrentEarnings           decimal.Decimal `db:"currentEarnings"`           // Текущий невыплаченный заработок
	LifetimeEarnings          decimal.Decimal `db:"lifetimeEarnings"`          // Заработок за всё время
	TotalPaidOut              decimal.Decimal `db:"totalPaidOut"`              // Сколько всего выплачено
	IsActive                  bool            `db:"isActive"`                  // false = пользователь заблокирован
	TotalPhotosRated          int             `db:"totalPhotosRated"`          // Всего оценено фотографий
	PhotosRatedInCurrentBatch int             `db:"photosRatedInCurrentBatch"` // Оценено в текущей пачке
	RatingsInCurrentPeriod    int             `db:"ratingsInCurrentPeriod"`    // Оценок в текущем периоде
	CreatedAt                 time.Time       `db:"createdAt"`
	UpdatedAt                 time.Time       `db:"updatedAt"`
}
