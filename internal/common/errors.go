// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять оператору понятные сообщения.
package common

import "errors"

// Ошибки выплат
var (
	// ErrNoPaymentIDs — пустой список ID выплат
	ErrNoPaymentIDs = errors.New("список ID выплат пуст")
	// ErrPaymentNotFound — выплата не найдена в базе
	ErrPaymentNotFound = errors.New("выплата не найдена")
)

// Ошибки сброса/разблокировки
var (
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrInvalidCheckAmount — некорректное количество фотографий (ноль или отрицательное)
	ErrInvalidCheckAmount = errors.New("количество фотографий должно быть положительным")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrLoginDisabled — вход по паролю не настроен (нет ADMIN_PASSWORD_HASH)
	ErrLoginDisabled = errors.New("вход по паролю отключён")
)
