package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/munquest/admin-portal/internal/backend"
)

// ErrUnknownAction — действие не определено для таблицы или строки.
var ErrUnknownAction = errors.New("неизвестное действие")

// RunAction выполняет доменное действие меню над строкой id.
// arg — выбранный вариант для действий с вариантами (например, роль).
// Меню закрывается до запроса. Строка с выполняющимся запросом отклоняется
// с предупреждением. После ответа backend: тост и одна перезагрузка.
func (t *Table[T]) RunAction(ctx context.Context, s backend.Session, id, action, arg string) error {
	t.mu.Lock()
	t.touch()
	t.menuOpen = ""

	act, ok := t.schema.action(action)
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	item, ok := t.find(id)
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if act.Visible != nil && !act.Visible(item) {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s для строки %s", ErrUnknownAction, action, id)
	}
	if act.Choices != nil && !hasChoice(act.Choices(item), arg) {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s=%q", ErrUnknownAction, action, arg)
	}
	if t.pending[id] {
		t.mu.Unlock()
		t.notify.Warning(busyMessage)
		return ErrBusy
	}
	t.pending[id] = true
	t.mu.Unlock()

	st, err := t.source.Do(ctx, s, id, action, arg)

	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()

	if err != nil {
		return t.fail(ctx, s, action, id, err)
	}

	success := note(MsgUpdated, t.schema.Resource)
	if act.Success != "" {
		success = note(act.Success)
	}
	m := t.settle(action, id, st, success, note(MsgActionFailed, act.Label))
	t.observer.Observe(ctx, s, m)
	return t.Refresh(ctx, s)
}

// Pending сообщает, выполняется ли запрос по строке id.
func (t *Table[T]) Pending(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending[id]
}

func hasChoice(choices []Choice, value string) bool {
	for _, c := range choices {
		if c.Value == value {
			return true
		}
	}
	return false
}
