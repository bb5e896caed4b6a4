package table

import (
	"context"
	"fmt"

	"github.com/munquest/admin-portal/internal/backend"
)

// BeginEdit переводит таблицу в Editing(id): копирует редактируемые поля
// строки в буфер, закрывает меню и отменяет добавление. Буфер ранее
// редактируемой строки отбрасывается.
func (t *Table[T]) BeginEdit(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	if !t.schema.CanEdit {
		return ErrUnsupported
	}
	item, ok := t.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if t.pending[id] {
		t.notify.Warning(busyMessage)
		return ErrBusy
	}

	t.editing = id
	t.editBuf = t.schema.editable(item)
	t.menuOpen = ""
	t.deleteID = ""
	t.adding = false
	t.addBuf = nil
	return nil
}

// SetEditValues записывает значения в буфер редактирования.
// Учитываются только редактируемые поля; вне Editing ничего не делает.
func (t *Table[T]) SetEditValues(v Values) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	if t.editing == "" {
		return
	}
	for _, f := range t.schema.Fields {
		if val, ok := v[f.Key]; ok && f.Editable() {
			t.editBuf[f.Key] = val
		}
	}
}

// CancelEdit отбрасывает буфер редактирования без обращения к backend.
func (t *Table[T]) CancelEdit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	t.editing = ""
	t.editBuf = nil
}

// Editing возвращает id редактируемой строки и копию буфера.
func (t *Table[T]) Editing() (string, Values) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.editing, t.editBuf.Clone()
}

// SaveEdit сохраняет буфер редактирования.
// Незаполненные обязательные поля: тост ValidationMessage, состояние Editing,
// запрос не отправляется. После ответа backend (success true или false):
// тост, очистка буфера, Idle и ровно одна перезагрузка коллекции.
// Ошибка транспорта: тост, состояние Editing сохраняется для повтора.
func (t *Table[T]) SaveEdit(ctx context.Context, s backend.Session) error {
	t.mu.Lock()
	t.touch()
	id := t.editing
	if id == "" {
		t.mu.Unlock()
		return ErrIdle
	}
	if t.pending[id] {
		t.mu.Unlock()
		t.notify.Warning(busyMessage)
		return ErrBusy
	}
	if msg := t.schema.check(t.editBuf); msg != "" {
		t.mu.Unlock()
		t.notify.Error(msg)
		return ErrValidation
	}
	values := t.editBuf.Trimmed()
	t.pending[id] = true
	t.mu.Unlock()

	st, err := t.source.Update(ctx, s, id, values)

	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()

	if err != nil {
		return t.fail(ctx, s, "update", id, err)
	}

	m := t.settle("update", id, st,
		note(MsgUpdated, t.schema.Resource),
		note(MsgUpdateFailed, t.resourceName()))

	t.mu.Lock()
	if t.editing == id {
		t.editing = ""
		t.editBuf = nil
	}
	t.mu.Unlock()

	t.observer.Observe(ctx, s, m)
	return t.Refresh(ctx, s)
}
