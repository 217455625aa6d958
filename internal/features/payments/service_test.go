package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"admin-bot/internal/common"
)

// storeMock — мок хранилища в стиле function-field: каждый тест
// подставляет своё поведение CompleteOne.
type storeMock struct {
	completeOneFn func(ctx context.Context, paymentID string) (bool, error)
	calls         []string
}

func (m *storeMock) CompleteOne(ctx context.Context, paymentID string) (bool, error) {
	m.calls = append(m.calls, paymentID)
	if m.completeOneFn != nil {
		return m.completeOneFn(ctx, paymentID)
	}
	return false, nil
}

func TestCompleteBatchEmptyInput(t *testing.T) {
	store := &storeMock{}
	svc := NewService(store)

	result := svc.CompleteBatch(context.Background(), nil)

	require.False(t, result.Success)
	require.NotEmpty(t, result.Message)
	require.Empty(t, result.Items)
	// Пустой вход — ни одной транзакции
	require.Empty(t, store.calls)
}

func TestCompleteBatchPartialFailureIsolation(t *testing.T) {
	store := &storeMock{
		completeOneFn: func(_ context.Context, paymentID string) (bool, error) {
			if paymentID == "missing" {
				return false, common.ErrPaymentNotFound
			}
			return false, nil
		},
	}
	svc := NewService(store)

	result := svc.CompleteBatch(context.Background(), []string{"valid-1", "missing", "valid-2"})

	require.True(t, result.Success)
	require.Len(t, result.Items, 3)
	require.Equal(t, ItemCompleted, result.Items[0].Status)
	require.Equal(t, ItemNotFound, result.Items[1].Status)
	require.Equal(t, ItemCompleted, result.Items[2].Status)

	require.Equal(t, 3, result.Summary.Total)
	require.Equal(t, 2, result.Summary.Completed)
	require.Equal(t, 1, result.Summary.NotFound)
	require.Equal(t, 0, result.Summary.Errors)
}

func TestCompleteBatchDuplicateIDs(t *testing.T) {
	// Стейтфул-мок: второе вхождение того же ID видит закоммиченное
	// состояние первого
	completed := make(map[string]bool)
	store := &storeMock{
		completeOneFn: func(_ context.Context, paymentID string) (bool, error) {
			was := completed[paymentID]
			completed[paymentID] = true
			return was, nil
		},
	}
	svc := NewService(store)

	result := svc.CompleteBatch(context.Background(), []string{"pay-1", "pay-1"})

	require.True(t, result.Success)
	require.Len(t, result.Items, 2)
	require.False(t, result.Items[0].WasAlreadyCompleted)
	require.True(t, result.Items[1].WasAlreadyCompleted)
	require.Equal(t, 2, result.Summary.Completed)
}

func TestCompleteBatchErrorDoesNotStopProcessing(t *testing.T) {
	store := &storeMock{
		completeOneFn: func(_ context.Context, paymentID string) (bool, error) {
			if paymentID == "broken" {
				return false, errors.New("connection reset")
			}
			return false, nil
		},
	}
	svc := NewService(store)

	result := svc.CompleteBatch(context.Background(), []string{"broken", "valid"})

	require.True(t, result.Success)
	require.Len(t, result.Items, 2)
	require.Equal(t, ItemError, result.Items[0].Status)
	// Текст ошибки сохраняется для диагностики
	require.Equal(t, "connection reset", result.Items[0].Error)
	require.Equal(t, ItemCompleted, result.Items[1].Status)
	require.Equal(t, 1, result.Summary.Errors)
	require.Equal(t, 1, result.Summary.Completed)
}
