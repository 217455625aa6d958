// Package repair — repository.go выполняет шаги сброса-разблокировки в БД.
// Вся операция идёт в ОДНОЙ транзакции: любая ошибка после первой записи
// откатывает всё, частичных мутаций не остаётся.
package repair

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"admin-bot/internal/common"
	"admin-bot/internal/features/users"
)

// Store открывает транзакцию и отдаёт сервису шаговые методы StoreTx.
// Коммит — только если fn вернула nil; иначе полный откат.
type Store interface {
	InTx(ctx context.Context, fn func(StoreTx) error) error
}

// StoreTx — шаги операции внутри одной транзакции.
// Тонкие методы доступа к данным; арифметика (клампинг, округление)
// живёт в сервисе.
type StoreTx interface {
	// AffectedPhotoIDs возвращает до limit последних оценённых пользователем
	// РАЗЛИЧНЫХ фотографий: группировка по photoId, сортировка по
	// MAX(startTime) по убыванию. Меньше limit — не ошибка.
	AffectedPhotoIDs(ctx context.Context, userID string, limit int) ([]string, error)
	// PositiveEarningsSum суммирует earnings строго больше нуля
	// по оценкам пользователя на затронутых фотографиях.
	PositiveEarningsSum(ctx context.Context, userID string, photoIDs []string) (decimal.Decimal, error)
	// UserForUpdate читает пользователя с блокировкой строки.
	UserForUpdate(ctx context.Context, userID string) (*users.User, error)
	// SaveUserReset записывает откатанные поля пользователя.
	SaveUserReset(ctx context.Context, u *users.User) error
	// DeleteRatings удаляет ВСЕ оценки пользователя на затронутых фотографиях
	// (не только с положительным earnings). Возвращает количество удалённых строк.
	DeleteRatings(ctx context.Context, userID string, photoIDs []string) (int64, error)
	// PhotoRatingStats считает оставшиеся оценки фотографии (всех пользователей)
	// после удалений этой же транзакции.
	PhotoRatingStats(ctx context.Context, photoID string) (count int, avg decimal.Decimal, err error)
	// SavePhotoStats записывает пересчитанную статистику фотографии.
	SavePhotoStats(ctx context.Context, photoID string, totalRatings int, avgRating decimal.Decimal) error
}

// Repository — реализация Store поверх pgxpool.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий сброса-разблокировки.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// InTx выполняет fn в транзакции БД с гарантированным откатом при ошибке.
func (r *Repository) InTx(ctx context.Context, fn func(StoreTx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// pgTx реализует StoreTx поверх открытой транзакции pgx.
type pgTx struct {
	tx pgx.Tx
}

func (p *pgTx) AffectedPhotoIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	rows, err := p.tx.Query(ctx, `
		SELECT "photoId"
		FROM "Ratings"
		WHERE "userId" = $1
		GROUP BY "photoId"
		ORDER BY MAX("startTime") DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки затронутых фотографий: %w", err)
	}
	defer rows.Close()

	var photoIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования photoId: %w", err)
		}
		photoIDs = append(photoIDs, id)
	}
	return photoIDs, rows.Err()
}

func (p *pgTx) PositiveEarningsSum(ctx context.Context, userID string, photoIDs []string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := p.tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(earnings), 0)
		FROM "Ratings"
		WHERE "userId" = $1 AND "photoId" = ANY($2::uuid[]) AND earnings > 0
	`, userID, photoIDs).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ошибка суммирования earnings: %w", err)
	}
	return sum, nil
}

func (p *pgTx) UserForUpdate(ctx context.Context, userID string) (*users.User, error) {
	var u users.User
	err := p.tx.QueryRow(ctx, `
		SELECT id, email, "currentEarnings", "lifetimeEarnings", "totalPaidOut",
			"isActive", "totalPhotosRated", "photosRatedInCurrentBatch", "ratingsInCurrentPeriod",
			"createdAt", "updatedAt"
		FROM "Users"
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(
		&u.ID, &u.Email, &u.CurrentEarnings, &u.LifetimeEarnings, &u.TotalPaidOut,
		&u.IsActive, &u.TotalPhotosRated, &u.PhotosRatedInCurrentBatch, &u.RatingsInCurrentPeriod,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения пользователя: %w", err)
	}
	return &u, nil
}

func (p *pgTx) SaveUserReset(ctx context.Context, u *users.User) error {
	_, err := p.tx.Exec(ctx, `
		UPDATE "Users"
		SET "currentEarnings" = $2,
		    "lifetimeEarnings" = $3,
		    "isActive" = $4,
		    "totalPhotosRated" = $5,
		    "photosRatedInCurrentBatch" = $6,
		    "ratingsInCurrentPeriod" = $7,
		    "updatedAt" = $8
		WHERE id = $1
	`, u.ID, u.CurrentEarnings, u.LifetimeEarnings, u.IsActive,
		u.TotalPhotosRated, u.PhotosRatedInCurrentBatch, u.RatingsInCurrentPeriod,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	return nil
}

func (p *pgTx) DeleteRatings(ctx context.Context, userID string, photoIDs []string) (int64, error) {
	ct, err := p.tx.Exec(ctx, `
		DELETE FROM "Ratings"
		WHERE "userId" = $1 AND "photoId" = ANY($2::uuid[])
	`, userID, photoIDs)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления оценок: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (p *pgTx) PhotoRatingStats(ctx context.Context, photoID string) (int, decimal.Decimal, error) {
	var (
		count int
		avg   decimal.Decimal
	)
	err := p.tx.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(AVG(rating), 0)
		FROM "Ratings"
		WHERE "photoId" = $1
	`, photoID).Scan(&count, &avg)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("ошибка пересчёта статистики фотографии: %w", err)
	}
	return count, avg, nil
}

func (p *pgTx) SavePhotoStats(ctx context.Context, photoID string, totalRatings int, avgRating decimal.Decimal) error {
	_, err := p.tx.Exec(ctx, `
		UPDATE "Photos"
		SET "totalRatings" = $2, "averageRating" = $3, "updatedAt" = $4
		WHERE id = $1
	`, photoID, totalRatings, avgRating, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ошибка сохранения статистики фотографии: %w", err)
	}
	return nil
}
