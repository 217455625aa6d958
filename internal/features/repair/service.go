// Package repair — service.go содержит логику составной операции.
// Порядок шагов фиксирован: пересчёт статистики фотографий обязан видеть
// удаления этой же транзакции, поэтому он идёт строго после DeleteRatings.
package repair

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"admin-bot/internal/common"
)

// Service выполняет сброс-разблокировку пользователя.
type Service struct {
	store Store
}

// NewService создаёт сервис сброса-разблокировки.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ResetUnblock откатывает последние checkAmount различных оценённых фотографий
// пользователя и разблокирует аккаунт. Одна all-or-nothing транзакция.
//
// Шаги:
//  1. Выбрать затронутые фотографии (последние по MAX(startTime), до checkAmount штук).
//  2. Нет оценок вообще — «нечего сбрасывать», строку пользователя не трогаем.
//  3. Просуммировать ТОЛЬКО положительные earnings по затронутым фотографиям.
//  4. Откатить поля пользователя: заработок с клампом в ноль (каждое поле
//     независимо), isActive = true, счётчики вниз/в ноль.
//  5. Удалить ВСЕ оценки пользователя на затронутых фотографиях
//     (удаление безусловное, в отличие от суммы из шага 3).
//  6. Пересчитать totalRatings и averageRating каждой затронутой фотографии
//     по оставшимся оценкам всех пользователей.
//
// Любая ошибка БД на шагах 3-6 откатывает транзакцию целиком.
func (s *Service) ResetUnblock(ctx context.Context, userID string, checkAmount int) (*Result, error) {
	if checkAmount <= 0 {
		// Структурно некорректный вход — транзакцию даже не открываем
		return nil, common.ErrInvalidCheckAmount
	}

	var res *Result
	err := s.store.InTx(ctx, func(tx StoreTx) error {
		photoIDs, err := tx.AffectedPhotoIDs(ctx, userID, checkAmount)
		if err != nil {
			return err
		}

		// Оценок нет — читающий исход, никаких записей
		if len(photoIDs) == 0 {
			res = &Result{UserID: userID, NothingToReset: true}
			return nil
		}

		subtract, err := tx.PositiveEarningsSum(ctx, userID, photoIDs)
		if err != nil {
			return err
		}

		user, err := tx.UserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		// Кламп в ноль — независимо для каждого поля: заработок и счётчики
		// никогда не уходят в минус
		user.CurrentEarnings = clampZero(user.CurrentEarnings.Sub(subtract))
		user.LifetimeEarnings = clampZero(user.LifetimeEarnings.Sub(subtract))
		user.IsActive = true
		user.TotalPhotosRated = maxInt(0, user.TotalPhotosRated-len(photoIDs))
		user.PhotosRatedInCurrentBatch = 0
		user.RatingsInCurrentPeriod = 0

		if err := tx.SaveUserReset(ctx, user); err != nil {
			return err
		}

		deleted, err := tx.DeleteRatings(ctx, userID, photoIDs)
		if err != nil {
			return err
		}

		// Пересчёт после удалений — внутри той же транзакции
		for _, photoID := range photoIDs {
			count, avg, err := tx.PhotoRatingStats(ctx, photoID)
			if err != nil {
				return err
			}
			if count == 0 {
				avg = decimal.Zero
			}
			if err := tx.SavePhotoStats(ctx, photoID, count, avg.Round(2)); err != nil {
				return err
			}
		}

		res = &Result{
			UserID:             userID,
			PhotoCount:         len(photoIDs),
			EarningsSubtracted: subtract,
			RatingsDeleted:     deleted,
			AffectedPhotoIDs:   photoIDs,
		}
		return nil
	})
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Сброс-разблокировка откатилась")
		return nil, err
	}

	if !res.NothingToReset {
		log.WithFields(log.Fields{
			"user_id":         userID,
			"photos":          res.PhotoCount,
			"earnings":        res.EarningsSubtracted.StringFixed(2),
			"ratings_deleted": res.RatingsDeleted,
		}).Info("Сброс-разблокировка выполнена")
	}
	return res, nil
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
