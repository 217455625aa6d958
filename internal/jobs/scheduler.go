// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает ежедневный дайджест для сисадминов:
// сколько выплат в каком статусе и сколько пользователей заблокировано.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"admin-bot/internal/common"
	"admin-bot/internal/features/payments"
	"admin-bot/internal/features/users"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron         *cron.Cron
	paymentsRepo *payments.Repository
	usersRepo    *users.Repository
	sysadminIDs  []int64
	sendFunc     func(userID int64, text string)
}

// NewScheduler создаёт планировщик задач в заданном часовом поясе.
func NewScheduler(
	timezone string,
	paymentsRepo *payments.Repository,
	usersRepo *users.Repository,
	sysadminIDs []int64,
	sendFunc func(userID int64, text string),
) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.WithError(err).Warnf("Не удалось загрузить %s, используем UTC", timezone)
		loc = time.UTC
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		paymentsRepo: paymentsRepo,
		usersRepo:    usersRepo,
		sysadminIDs:  sysadminIDs,
		sendFunc:     sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Дайджест каждый день в 10:00
	_, err := s.cron.AddFunc("0 10 * * *", func() {
		s.sendDigest(ctx)
	})
	if err != nil {
		log.WithError(err).Error("Не удалось зарегистрировать задачу дайджеста")
		return
	}

	s.cron.Start()
	log.Info("Планировщик задач запущен")
}

// Stop останавливает планировщик и ждёт завершения текущих задач.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Планировщик задач остановлен")
}

// sendDigest собирает и рассылает дайджест всем сисадминам.
func (s *Scheduler) sendDigest(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	counts, err := s.paymentsRepo.CountByStatus(ctx)
	if err != nil {
		log.WithError(err).Error("Дайджест: не удалось посчитать выплаты")
		return
	}
	blocked, err := s.usersRepo.CountBlocked(ctx)
	if err != nil {
		log.WithError(err).Error("Дайджест: не удалось посчитать заблокированных")
		return
	}

	text := formatDigest(time.Now(), counts, blocked)
	for _, id := range s.sysadminIDs {
		s.sendFunc(id, text)
	}
	log.WithField("sysadmins", len(s.sysadminIDs)).Info("Дайджест отправлен")
}

// Порядок статусов в дайджесте — от «требует внимания» к финальным.
var digestOrder = []payments.Status{
	payments.StatusPending,
	payments.StatusProcessing,
	payments.StatusRetryPending,
	payments.StatusUnclaimed,
	payments.StatusFailed,
	payments.StatusCancelled,
	payments.StatusCompleted,
}

func formatDigest(now time.Time, counts map[payments.Status]int, blockedUsers int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 Дайджест за %s\n\nВыплаты по статусам:\n", common.FormatDateTime(now)))
	for _, status := range digestOrder {
		if count, ok := counts[status]; ok && count > 0 {
			sb.WriteString(fmt.Sprintf("  • %s: %d\n", status, count))
		}
	}
	sb.WriteString(fmt.Sprintf("\nЗаблокированных пользователей: %d", blockedUsers))
	return sb.String()
}
