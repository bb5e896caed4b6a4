package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/munquest/admin-portal/internal/domain/model"
)

// AuditFilter — параметры выборки журнала аудита.
type AuditFilter struct {
	// Resource — ключ таблицы; пусто — все таблицы
	Resource string
	// Search — подстрока без учёта регистра по actor, target_id и message
	Search string
	// Limit — максимальное число записей
	Limit int
}

// AuditLogRepository — интерфейс для таблицы audit_log.
type AuditLogRepository interface {
	// Insert добавляет запись журнала.
	Insert(ctx context.Context, e *model.AuditEntry) error
	// List возвращает последние записи, новые первыми.
	List(ctx context.Context, f AuditFilter) ([]model.AuditEntry, error)
	// Count возвращает общее число записей.
	Count(ctx context.Context) (int, error)
}

type auditLogRepo struct {
	db DBTX
}

// NewAuditLogRepository создаёт репозиторий журнала аудита.
func NewAuditLogRepository(db DBTX) AuditLogRepository {
	return &auditLogRepo{db: db}
}

// Insert добавляет запись. ID и CreatedAt заполняются вызывающим кодом.
func (r *auditLogRepo) Insert(ctx context.Context, e *model.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, actor, resource, action, target_id, outcome, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		e.ID, e.Actor, e.Resource, e.Action, e.TargetID, e.Outcome, e.Message, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: audit_log[%s]", ErrConflict, e.ID)
		}
		return fmt.Errorf("ошибка записи audit_log: %w", err)
	}
	return nil
}

// List возвращает записи журнала по фильтру.
func (r *auditLogRepo) List(ctx context.Context, f AuditFilter) ([]model.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.Resource != "" {
		args = append(args, f.Resource)
		where = append(where, fmt.Sprintf("resource = $%d", len(args)))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(actor ILIKE $%d OR target_id ILIKE $%d OR message ILIKE $%d)", n, n, n))
	}

	query := `
		SELECT id, actor, resource, action, target_id, outcome, message, created_at
		FROM audit_log`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка audit_log: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Resource, &e.Action, &e.TargetID,
			&e.Outcome, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования audit_log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count возвращает общее число записей журнала.
func (r *auditLogRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта audit_log: %w", err)
	}
	return n, nil
}

// escapeLike экранирует спецсимволы шаблона LIKE.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
