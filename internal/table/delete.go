package table

import (
	"context"
	"fmt"

	"github.com/munquest/admin-portal/internal/backend"
)

// RequestDelete открывает подтверждение удаления строки id и закрывает меню.
func (t *Table[T]) RequestDelete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	t.menuOpen = ""
	if !t.schema.CanDelete {
		return ErrUnsupported
	}
	if _, ok := t.find(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if t.pending[id] {
		t.notify.Warning(busyMessage)
		return ErrBusy
	}
	t.deleteID = id
	return nil
}

// CancelDelete закрывает подтверждение без обращения к backend.
func (t *Table[T]) CancelDelete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()
	t.deleteID = ""
}

// PendingDelete возвращает id строки, ожидающей подтверждения удаления.
func (t *Table[T]) PendingDelete() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleteID
}

// ConfirmDelete удаляет строку, ожидающую подтверждения.
// Коллекция перезагружается только при success:true.
func (t *Table[T]) ConfirmDelete(ctx context.Context, s backend.Session) error {
	t.mu.Lock()
	t.touch()
	id := t.deleteID
	if id == "" {
		t.mu.Unlock()
		return ErrIdle
	}
	if t.pending[id] {
		t.mu.Unlock()
		t.notify.Warning(busyMessage)
		return ErrBusy
	}
	t.deleteID = ""
	t.pending[id] = true
	t.mu.Unlock()

	st, err := t.source.Delete(ctx, s, id)

	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()

	if err != nil {
		return t.fail(ctx, s, "delete", id, err)
	}

	m := t.settle("delete", id, st,
		note(MsgDeleted, t.schema.Resource),
		note(MsgDeleteFailed, t.resourceName()))
	t.observer.Observe(ctx, s, m)

	if !st.Success {
		return nil
	}
	return t.Refresh(ctx, s)
}
