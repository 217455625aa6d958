// Package roster управляет списком администраторов бота.
// Сисадмины задаются конфигурацией (Telegram user ID) и авторизованы всегда.
// Суб-админы хранятся в памяти процесса по username и не переживают рестарт —
// это осознанное решение: список маленький и выдаётся заново за минуту.
package roster

import (
	"sort"
	"strings"
	"sync"
)

// Authorizer — проверки прав, которые нужны боту.
// Бот зависит от интерфейса, а не от конкретного менеджера,
// чтобы маршрутизация оставалась свободной от деталей авторизации.
type Authorizer interface {
	IsSysadmin(userID int64) bool
	IsAdmin(username string) bool
}

// Manager — реестр администраторов.
type Manager struct {
	sysadmins map[int64]struct{}

	mu     sync.RWMutex
	admins map[string]struct{} // нормализованные username
}

// NewManager создаёт реестр с заданными сисадминами.
func NewManager(sysadminIDs []int64) *Manager {
	sysadmins := make(map[int64]struct{}, len(sysadminIDs))
	for _, id := range sysadminIDs {
		sysadmins[id] = struct{}{}
	}
	return &Manager{
		sysadmins: sysadmins,
		admins:    make(map[string]struct{}),
	}
}

// Normalize приводит username к каноничному виду: нижний регистр, без @.
func Normalize(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

// IsSysadmin проверяет, является ли пользователь сисадмином (по user ID).
func (m *Manager) IsSysadmin(userID int64) bool {
	_, ok := m.sysadmins[userID]
	return ok
}

// IsAdmin проверяет, является ли username суб-админом.
// Пустой username (у пользователя нет @username) — всегда false.
func (m *Manager) IsAdmin(username string) bool {
	normalized := Normalize(username)
	if normalized == "" {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.admins[normalized]
	return ok
}

// Add добавляет суб-админа. Возвращает false, если он уже есть
// или username пустой.
func (m *Manager) Add(username string) bool {
	normalized := Normalize(username)
	if normalized == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.admins[normalized]; ok {
		return false
	}
	m.admins[normalized] = struct{}{}
	return true
}

// Remove удаляет суб-админа. Возвращает false, если его не было.
func (m *Manager) Remove(username string) bool {
	normalized := Normalize(username)
	if normalized == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.admins[normalized]; !ok {
		return false
	}
	delete(m.admins, normalized)
	return true
}

// List возвращает отсортированный список суб-админов (без сисадминов).
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.admins))
	for username := range m.admins {
		out = append(out, username)
	}
	sort.Strings(out)
	return out
}

// SysadminIDs возвращает список ID сисадминов (для дайджеста и /list_admins).
func (m *Manager) SysadminIDs() []int64 {
	out := make([]int64, 0, len(m.sysadmins))
	for id := range m.sysadmins {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
