// Package repair реализует составную операцию «сброс и разблокировка»:
// откат последних оценённых фотографий пользователя с пересчётом
// статистики фотографий и реактивацией аккаунта.
// models.go описывает структуры таблиц "Ratings", "Photos" и результат операции.
package repair

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rating — одно событие оценки: один пользователь, одна фотография,
// один момент времени. Пользователь мог оценивать одну фотографию
// в нескольких сессиях, поэтому photoId не уникален в рамках пользователя.
type Rating struct {
	ID        string          `db:"id"`      // UUID оценки
	UserID    string          `db:"userId"`  // Кто оценивал
	PhotoID   string          `db:"photoId"` // Что оценивал
	Rating    int             `db:"rating"`  // Значение оценки
	StartTime time.Time       `db:"startTime"`
	EndTime   time.Time       `db:"endTime"`
	Earnings  decimal.Decimal `db:"earnings"` // Заработок за оценку (0 или больше)
	CreatedAt time.Time       `db:"createdAt"`
	UpdatedAt time.Time       `db:"updatedAt"`
}

// Photo — фотография с агрегированной статистикой оценок.
// totalRatings и averageRating пересчитываются после удаления оценок.
type Photo struct {
	ID            string          `db:"id"`
	TotalRatings  int             `db:"totalRatings"`  // Количество оценок всеми пользователями
	AverageRating decimal.Decimal `db:"averageRating"` // Среднее, 2 знака, 0 если оценок нет
	CreatedAt     time.Time       `db:"createdAt"`
	UpdatedAt     time.Time       `db:"updatedAt"`
	DeletedAt     *time.Time      `db:"deletedAt"` // Soft-delete платформы
}

// Result — структурированный итог сброса-разблокировки.
// Обрезкой списка AffectedPhotoIDs для показа занимается обработчик,
// сервис всегда отдаёт полный список.
type Result struct {
	UserID             string
	NothingToReset     bool            // У пользователя нет оценок — ничего не трогали
	PhotoCount         int             // Сколько фотографий затронуто
	EarningsSubtracted decimal.Decimal // Сумма списанного заработка
	RatingsDeleted     int64           // Сколько строк оценок удалено
	AffectedPhotoIDs   []string        // Полный список затронутых фотографий
}
