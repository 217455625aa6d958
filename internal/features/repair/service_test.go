package repair

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"admin-bot/internal/common"
	"admin-bot/internal/features/users"
)

// memStore — хранилище в памяти, реализующее Store/StoreTx поверх карт.
// InTx снимает снапшот и восстанавливает его при ошибке — как откат
// транзакции в настоящей БД.
type memStore struct {
	user    *users.User
	ratings []Rating
	photos  map[string]*Photo

	failOn     string // имя шага, на котором вернуть ошибку
	rolledBack bool
	txOpened   int
}

func (s *memStore) InTx(_ context.Context, fn func(StoreTx) error) error {
	s.txOpened++

	// Снапшот состояния до транзакции
	var userCopy *users.User
	if s.user != nil {
		u := *s.user
		userCopy = &u
	}
	ratingsCopy := append([]Rating(nil), s.ratings...)
	photosCopy := make(map[string]*Photo, len(s.photos))
	for id, p := range s.photos {
		cp := *p
		photosCopy[id] = &cp
	}

	if err := fn(&memTx{s: s}); err != nil {
		// Откат
		s.user = userCopy
		s.ratings = ratingsCopy
		s.photos = photosCopy
		s.rolledBack = true
		return err
	}
	return nil
}

type memTx struct {
	s *memStore
}

func (t *memTx) AffectedPhotoIDs(_ context.Context, userID string, limit int) ([]string, error) {
	if t.s.failOn == "AffectedPhotoIDs" {
		return nil, errors.New("injected failure")
	}

	latest := make(map[string]time.Time)
	for _, r := range t.s.ratings {
		if r.UserID != userID {
			continue
		}
		if r.StartTime.After(latest[r.PhotoID]) {
			latest[r.PhotoID] = r.StartTime
		}
	}

	photoIDs := make([]string, 0, len(latest))
	for id := range latest {
		photoIDs = append(photoIDs, id)
	}
	sort.Slice(photoIDs, func(i, j int) bool {
		return latest[photoIDs[i]].After(latest[photoIDs[j]])
	})
	if len(photoIDs) > limit {
		photoIDs = photoIDs[:limit]
	}
	return photoIDs, nil
}

func (t *memTx) PositiveEarningsSum(_ context.Context, userID string, photoIDs []string) (decimal.Decimal, error) {
	if t.s.failOn == "PositiveEarningsSum" {
		return decimal.Zero, errors.New("injected failure")
	}
	affected := toSet(photoIDs)
	sum := decimal.Zero
	for _, r := range t.s.ratings {
		if r.UserID == userID && affected[r.PhotoID] && r.Earnings.IsPositive() {
			sum = sum.Add(r.Earnings)
		}
	}
	return sum, nil
}

func (t *memTx) UserForUpdate(_ context.Context, userID string) (*users.User, error) {
	if t.s.failOn == "UserForUpdate" {
		return nil, errors.New("injected failure")
	}
	if t.s.user == nil || t.s.user.ID != userID {
		return nil, common.ErrUserNotFound
	}
	u := *t.s.user
	return &u, nil
}

func (t *memTx) SaveUserReset(_ context.Context, u *users.User) error {
	if t.s.failOn == "SaveUserReset" {
		return errors.New("injected failure")
	}
	cp := *u
	t.s.user = &cp
	return nil
}

func (t *memTx) DeleteRatings(_ context.Context, userID string, photoIDs []string) (int64, error) {
	if t.s.failOn == "DeleteRatings" {
		return 0, errors.New("injected failure")
	}
	affected := toSet(photoIDs)
	var kept []Rating
	var deleted int64
	for _, r := range t.s.ratings {
		if r.UserID == userID && affected[r.PhotoID] {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	t.s.ratings = kept
	return deleted, nil
}

func (t *memTx) PhotoRatingStats(_ context.Context, photoID string) (int, decimal.Decimal, error) {
	if t.s.failOn == "PhotoRatingStats" {
		return 0, decimal.Zero, errors.New("injected failure")
	}
	count := 0
	sum := decimal.Zero
	for _, r := range t.s.ratings {
		if r.PhotoID == photoID {
			count++
			sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
		}
	}
	if count == 0 {
		return 0, decimal.Zero, nil
	}
	return count, sum.Div(decimal.NewFromInt(int64(count))), nil
}

func (t *memTx) SavePhotoStats(_ context.Context, photoID string, totalRatings int, avgRating decimal.Decimal) error {
	if t.s.failOn == "SavePhotoStats" {
		return errors.New("injected failure")
	}
	p, ok := t.s.photos[photoID]
	if !ok {
		return nil
	}
	p.TotalRatings = totalRatings
	p.AverageRating = avgRating
	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func money(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func testUser() *users.User {
	return &users.User{
		ID:                        "user-1",
		Email:                     "test11@example.com",
		CurrentEarnings:           money("0.30"),
		LifetimeEarnings:          money("10.00"),
		IsActive:                  false,
		TotalPhotosRated:          7,
		PhotosRatedInCurrentBatch: 3,
		RatingsInCurrentPeriod:    5,
	}
}

func TestResetUnblockInvalidCheckAmount(t *testing.T) {
	store := &memStore{user: testUser(), photos: map[string]*Photo{}}
	svc := NewService(store)

	for _, amount := range []int{0, -1} {
		_, err := svc.ResetUnblock(context.Background(), "user-1", amount)
		require.ErrorIs(t, err, common.ErrInvalidCheckAmount)
	}
	// Некорректный вход — транзакция даже не открывается
	require.Equal(t, 0, store.txOpened)
}

func TestResetUnblockNothingToReset(t *testing.T) {
	user := testUser()
	before := *user
	store := &memStore{user: user, photos: map[string]*Photo{}}
	svc := NewService(store)

	result, err := svc.ResetUnblock(context.Background(), "user-1", 5)

	require.NoError(t, err)
	require.True(t, result.NothingToReset)
	// Строка пользователя не тронута: поля и isActive как были
	require.Equal(t, before, *store.user)
	require.False(t, store.user.IsActive)
}

func TestResetUnblockClampsEarningsAtZero(t *testing.T) {
	now := time.Now()
	store := &memStore{
		user: testUser(),
		ratings: []Rating{
			{ID: "r1", UserID: "user-1", PhotoID: "photo-1", Rating: 4, StartTime: now, Earnings: money("0.50")},
		},
		photos: map[string]*Photo{"photo-1": {ID: "photo-1"}},
	}
	svc := NewService(store)

	result, err := svc.ResetUnblock(context.Background(), "user-1", 5)

	require.NoError(t, err)
	require.True(t, result.EarningsSubtracted.Equal(money("0.50")))
	// 0.30 - 0.50 → кламп в 0.00, не отрицательное
	require.True(t, store.user.CurrentEarnings.Equal(decimal.Zero),
		"currentEarnings = %s", store.user.CurrentEarnings)
	// lifetimeEarnings клампится независимо: 10.00 - 0.50 = 9.50
	require.True(t, store.user.LifetimeEarnings.Equal(money("9.50")),
		"lifetimeEarnings = %s", store.user.LifetimeEarnings)

	require.True(t, store.user.IsActive)
	require.Equal(t, 6, store.user.TotalPhotosRated)
	require.Equal(t, 0, store.user.PhotosRatedInCurrentBatch)
	require.Equal(t, 0, store.user.RatingsInCurrentPeriod)
}

func TestResetUnblockRecomputesPhotoStats(t *testing.T) {
	now := time.Now()
	store := &memStore{
		user: testUser(),
		ratings: []Rating{
			// Оценки других пользователей остаются
			{ID: "r1", UserID: "other-1", PhotoID: "photo-1", Rating: 3, StartTime: now.Add(-2 * time.Hour)},
			{ID: "r2", UserID: "other-2", PhotoID: "photo-1", Rating: 4, StartTime: now.Add(-1 * time.Hour)},
			// Оценка целевого пользователя удаляется
			{ID: "r3", UserID: "user-1", PhotoID: "photo-1", Rating: 5, StartTime: now, Earnings: money("0.20")},
		},
		photos: map[string]*Photo{
			"photo-1": {ID: "photo-1", TotalRatings: 3, AverageRating: money("4.00")},
		},
	}
	svc := NewService(store)

	result, err := svc.ResetUnblock(context.Background(), "user-1", 5)

	require.NoError(t, err)
	require.Equal(t, int64(1), result.RatingsDeleted)
	// Остались [3, 4]: totalRatings = 2, averageRating = 3.50
	require.Equal(t, 2, store.photos["photo-1"].TotalRatings)
	require.Equal(t, "3.50", store.photos["photo-1"].AverageRating.StringFixed(2))
}

func TestResetUnblockAverageZeroWhenNoRatingsRemain(t *testing.T) {
	now := time.Now()
	store := &memStore{
		user: testUser(),
		ratings: []Rating{
			{ID: "r1", UserID: "user-1", PhotoID: "photo-1", Rating: 5, StartTime: now, Earnings: money("0.20")},
		},
		photos: map[string]*Photo{
			"photo-1": {ID: "photo-1", TotalRatings: 1, AverageRating: money("5.00")},
		},
	}
	svc := NewService(store)

	_, err := svc.ResetUnblock(context.Background(), "user-1", 1)

	require.NoError(t, err)
	require.Equal(t, 0, store.photos["photo-1"].TotalRatings)
	require.True(t, store.photos["photo-1"].AverageRating.Equal(decimal.Zero))
}

func TestResetUnblockFewerPhotosThanRequested(t *testing.T) {
	now := time.Now()
	store := &memStore{
		user: testUser(),
		ratings: []Rating{
			{ID: "r1", UserID: "user-1", PhotoID: "photo-1", Rating: 4, StartTime: now.Add(-1 * time.Hour), Earnings: money("0.20")},
			{ID: "r2", UserID: "user-1", PhotoID: "photo-2", Rating: 3, StartTime: now, Earnings: money("0.20")},
		},
		photos: map[string]*Photo{
			"photo-1": {ID: "photo-1"},
			"photo-2": {ID: "photo-2"},
		},
	}
	svc := NewService(store)

	result, err := svc.ResetUnblock(context.Background(), "user-1", 5)

	// Фотографий меньше, чем запросили — сбрасываются все, без ошибки
	require.NoError(t, err)
	require.Equal(t, 2, result.PhotoCount)
	require.Len(t, result.AffectedPhotoIDs, 2)
}

func TestResetUnblockSelectsMostRecentDistinctPhotos(t *testing.T) {
	now := time.Now()
	store := &memStore{
		user: testUser(),
		ratings: []Rating{
			// photo-1 оценена дважды (две сессии) — считается одной фотографией,
			// последняя сессия делает её самой свежей
			{ID: "r1", UserID: "user-1", PhotoID: "photo-1", Rating: 4, StartTime: now.Add(-5 * time.Hour), Earnings: money("0.20")},
			{ID: "r2", UserID: "user-1", PhotoID: "photo-1", Rating: 5, StartTime: now, Earnings: money("0.20")},
			{ID: "r3", UserID: "user-1", PhotoID: "photo-2", Rating: 3, StartTime: now.Add(-1 * time.Hour), Earnings: money("0.20")},
			{ID: "r4", UserID: "user-1", PhotoID: "photo-3", Rating: 2, StartTime: now.Add(-3 * time.Hour), Earnings: money("0.20")},
		},
		photos: map[string]*Photo{
			"photo-1": {ID: "photo-1"},
			"photo-2": {ID: "photo-2"},
			"photo-3": {ID: "photo-3"},
		},
	}
	svc := NewService(store)

	result, err := svc.ResetUnblock(context.Background(), "user-1", 2)

	require.NoError(t, err)
	require.Equal(t, []string{"photo-1", "photo-2"}, result.AffectedPhotoIDs)
	// Обе сессии по photo-1 удалены, photo-3 не тронута
	require.Equal(t, int64(3), result.RatingsDeleted)
	require.Len(t, store.ratings, 1)
	require.Equal(t, "photo-3", store.ratings[0].PhotoID)
}

func TestResetUnblockSkipsNonPositiveEarningsInSum(t *testing.T) {
	now := time.Now()
	store := &memStore{
		user: testUser(),
		ratings: []Rating{
			{ID: "r1", UserID: "user-1", PhotoID: "photo-1", Rating: 4, StartTime: now, Earnings: money("0.20")},
			// Нулевой earnings не входит в сумму, но строка всё равно удаляется
			{ID: "r2", UserID: "user-1", PhotoID: "photo-1", Rating: 5, StartTime: now.Add(-1 * time.Hour), Earnings: decimal.Zero},
		},
		photos: map[string]*Photo{"photo-1": {ID: "photo-1"}},
	}
	svc := NewService(store)

	result, err := svc.ResetUnblock(context.Background(), "user-1", 1)

	require.NoError(t, err)
	require.True(t, result.EarningsSubtracted.Equal(money("0.20")))
	require.Equal(t, int64(2), result.RatingsDeleted)
}

func TestResetUnblockRollsBackOnFailure(t *testing.T) {
	now := time.Now()
	user := testUser()
	before := *user
	store := &memStore{
		user: user,
		ratings: []Rating{
			{ID: "r1", UserID: "user-1", PhotoID: "photo-1", Rating: 4, StartTime: now, Earnings: money("0.50")},
		},
		photos: map[string]*Photo{
			"photo-1": {ID: "photo-1", TotalRatings: 1, AverageRating: money("4.00")},
		},
		// Падение между удалением и записью статистики
		failOn: "SavePhotoStats",
	}
	svc := NewService(store)

	_, err := svc.ResetUnblock(context.Background(), "user-1", 5)

	require.Error(t, err)
	require.True(t, store.rolledBack)
	// Состояние как до вызова: оценки на месте, пользователь не тронут
	require.Len(t, store.ratings, 1)
	require.Equal(t, before, *store.user)
	require.Equal(t, 1, store.photos["photo-1"].TotalRatings)
}

func TestResetUnblockUserNotFound(t *testing.T) {
	now := time.Now()
	store := &memStore{
		// Оценки есть, а пользователя нет — ошибка, полный откат
		ratings: []Rating{
			{ID: "r1", UserID: "user-1", PhotoID: "photo-1", Rating: 4, StartTime: now, Earnings: money("0.20")},
		},
		photos: map[string]*Photo{"photo-1": {ID: "photo-1"}},
	}
	svc := NewService(store)

	_, err := svc.ResetUnblock(context.Background(), "user-1", 1)

	require.ErrorIs(t, err, common.ErrUserNotFound)
	require.Len(t, store.ratings, 1)
}
