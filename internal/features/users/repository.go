// Package users — repository.go отвечает за чтение таблицы "Users".
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"admin-bot/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, email, "currentEarnings", "lifetimeEarnings", "totalPaidOut",
	"isActive", "totalPhotosRated", "photosRatedInCurrentBatch", "ratingsInCurrentPeriod",
	"createdAt", "updatedAt"`

// GetByEmail ищет пользователя по email.
// Если не найден — common.ErrUserNotFound.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM "Users" WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

// GetByID ищет пользователя по его UUID.
// Если не найден — common.ErrUserNotFound.
func (r *Repository) GetByID(ctx context.Context, userID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM "Users" WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, userID))
}

// CountBlocked возвращает количество заблокированных пользователей (isActive = false).
// Используется в ежедневном дайджесте.
func (r *Repository) CountBlocked(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM "Users" WHERE "isActive" = FALSE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта заблокированных: %w", err)
	}
	return count, nil
}

func (r *Repository) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
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
