// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование денежных сумм и времени.
package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney форматирует денежную сумму в строку вида "$12.34".
// Платформа считает выплаты в долларах, всегда две цифры после точки.
func FormatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// PluralizePhotos возвращает правильную форму слова «фотография» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "фотография" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "фотографии" (2, 3, 4, 22, ...)
//   - Остальные случаи → "фотографий" (0, 5-20, 25-30, 100, ...)
func PluralizePhotos(n int) string {
	return pluralize(n, "фотография", "фотографии", "фотографий")
}

// PluralizeRatings возвращает правильную форму слова «оценка».
func PluralizeRatings(n int) string {
	return pluralize(n, "оценка", "оценки", "оценок")
}

// PluralizePayments возвращает правильную форму слова «выплата».
func PluralizePayments(n int) string {
	return pluralize(n, "выплата", "выплаты", "выплат")
}

func pluralize(n int, one, few, many string) string {
	absN := n
	if absN < 0 {
		absN = -absN
	}
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	// Единственное число: 1, 21, 31, 101 (но НЕ 11, 111)
	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}

	// Малое множественное: 2-4, 22-24, 32-34 (но НЕ 12-14)
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}

	return many
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04".
// Используется в дайджесте и логах, отображаемых оператору.
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// TruncateIDs обрезает список идентификаторов для отображения в чате.
// Возвращает строку вида "id1, id2, id3 ... и ещё 7".
func TruncateIDs(ids []string, limit int) string {
	if len(ids) <= limit {
		return joinIDs(ids)
	}
	return fmt.Sprintf("%s ... и ещё %d", joinIDs(ids[:limit]), len(ids)-limit)
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += id
	}
	return out
}
