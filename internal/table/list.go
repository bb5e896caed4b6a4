package table

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/munquest/admin-portal/internal/backend"
)

// Load загружает коллекцию из backend и заменяет её целиком.
// При ошибке или success:false коллекция очищается и показывается тост
// (кроме ошибок аутентификации). Ответ загрузки, после которой началась
// более новая, отбрасывается.
func (t *Table[T]) Load(ctx context.Context, s backend.Session) error {
	t.mu.Lock()
	t.loadGen++
	gen := t.loadGen
	t.mu.Unlock()

	res, err := t.source.List(ctx, s)

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.loadGen {
		t.logger.Debug("Устаревший ответ списка отброшен",
			slog.Uint64("generation", gen),
			slog.Uint64("current", t.loadGen),
		)
		return nil
	}
	t.loaded = true

	if err != nil {
		t.items = nil
		if backend.IsAuthError(err) {
			return err
		}
		t.notify.Error(backend.Message(err))
		return fmt.Errorf("загрузка таблицы %s: %w", t.schema.Key, err)
	}

	if !res.Success {
		t.items = nil
		if strings.TrimSpace(res.Message) != "" {
			t.notify.Error(res.Message)
		} else {
			t.notify.Error(MsgLoadFailed, strings.ToLower(t.schema.Title))
		}
		return nil
	}

	t.items = append([]T(nil), res.Items...)
	if res.Rejected > 0 {
		t.logger.Warn("Часть записей отброшена при загрузке",
			slog.Int("rejected", res.Rejected),
		)
	}
	return nil
}

// Refresh повторно загружает коллекцию. Вызывается после каждой
// завершённой изменяющей операции.
func (t *Table[T]) Refresh(ctx context.Context, s backend.Session) error {
	return t.Load(ctx, s)
}

// Items возвращает копию коллекции.
func (t *Table[T]) Items() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]T(nil), t.items...)
}
