package model

import "time"

// Исходы операции в журнале аудита.
const (
	AuditOutcomeSuccess = "success"
	AuditOutcomeFailure = "failure"
	AuditOutcomeError   = "error"
)

// AuditEntry — запись журнала аудита изменений, выполненных через портал.
// Хранится в таблице audit_log.
type AuditEntry struct {
	// ID — UUID записи
	ID string
	// Actor — идентификатор пользователя портала (userId из сессии)
	Actor string
	// Resource — ресурс (committees, users, ...)
	Resource string
	// Action — create, update, delete или имя доменного действия
	Action string
	// TargetID — идентификатор записи backend (пусто для create)
	TargetID string
	// Outcome — success, failure (success:false от backend), error (транспорт)
	Outcome string
	// Message — сообщение backend или текст ошибки
	Message string
	// CreatedAt — время записи
	CreatedAt time.Time
}
