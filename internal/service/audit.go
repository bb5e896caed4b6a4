// audit.go — журнал изменений, выполненных через таблицы портала.
// Без PostgreSQL работает как no-op.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/model"
	"github.com/munquest/admin-portal/internal/repository"
	"github.com/munquest/admin-portal/internal/table"
)

// auditWriteTimeout — предел записи одной строки журнала.
const auditWriteTimeout = 3 * time.Second

// AuditService записывает итоги изменений и читает журнал.
type AuditService struct {
	repo     repository.AuditLogRepository
	pageSize int
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuditService создаёт сервис журнала. repo == nil отключает журнал.
func NewAuditService(repo repository.AuditLogRepository, pageSize int, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:     repo,
		pageSize: pageSize,
		logger:   logger.With(slog.String("component", "audit")),
		now:      time.Now,
	}
}

// Enabled сообщает, подключено ли хранилище журнала.
func (a *AuditService) Enabled() bool {
	return a.repo != nil
}

// Observe записывает итог операции таблицы. Ошибка записи только логируется:
// операция на backend уже выполнена.
func (a *AuditService) Observe(ctx context.Context, s backend.Session, m table.Mutation) {
	if a.repo == nil {
		return
	}
	entry := &model.AuditEntry{
		ID:        uuid.New().String(),
		Actor:     s.UserID,
		Resource:  m.Table,
		Action:    m.Action,
		TargetID:  m.TargetID,
		Outcome:   m.Outcome,
		Message:   m.Message,
		CreatedAt: a.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := a.repo.Insert(ctx, entry); err != nil {
		a.logger.Error("Не удалось записать журнал аудита",
			slog.String("resource", m.Table),
			slog.String("action", m.Action),
			slog.String("error", err.Error()),
		)
		return
	}
	a.logger.Debug("Запись журнала аудита",
		slog.String("resource", m.Table),
		slog.String("action", m.Action),
		slog.String("outcome", m.Outcome),
	)
}

// List возвращает последние записи журнала.
// Без хранилища возвращает пустой список.
func (a *AuditService) List(ctx context.Context, resource, search string) ([]model.AuditEntry, error) {
	if a.repo == nil {
		return nil, nil
	}
	entries, err := a.repo.List(ctx, repository.AuditFilter{
		Resource: resource,
		Search:   search,
		Limit:    a.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала аудита: %w", err)
	}
	return entries, nil
}
