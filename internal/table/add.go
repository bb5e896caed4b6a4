package table

import (
	"context"

	"github.com/munquest/admin-portal/internal/backend"
)

// BeginAdd переводит таблицу в Adding: буфер заполняется значениями
// по умолчанию, меню закрывается, редактирование отменяется.
// Повторный вызов в Adding отклоняется (кнопка добавления неактивна).
func (t *Table[T]) BeginAdd() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	if !t.schema.CanAdd {
		return ErrUnsupported
	}
	if t.adding {
		return ErrModeActive
	}

	t.adding = true
	t.addGen++
	t.addBuf = t.schema.defaults()
	t.menuOpen = ""
	t.deleteID = ""
	t.editing = ""
	t.editBuf = nil
	return nil
}

// SetAddValues записывает значения в буфер добавления.
func (t *Table[T]) SetAddValues(v Values) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	if !t.adding {
		return
	}
	for _, f := range t.schema.Fields {
		if val, ok := v[f.Key]; ok && f.Editable() {
			t.addBuf[f.Key] = val
		}
	}
}

// CancelAdd отбрасывает буфер добавления без обращения к backend.
func (t *Table[T]) CancelAdd() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	t.adding = false
	t.addBuf = nil
}

// Adding сообщает, активен ли режим добавления, и возвращает копию буфера.
func (t *Table[T]) Adding() (bool, Values) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.adding, t.addBuf.Clone()
}

// SaveAdd создаёт запись из буфера добавления.
// Семантика совпадает с SaveEdit: проверка обязательных полей до запроса,
// после ответа backend тост, сброс буфера, Idle и одна перезагрузка.
func (t *Table[T]) SaveAdd(ctx context.Context, s backend.Session) error {
	t.mu.Lock()
	t.touch()
	if !t.adding {
		t.mu.Unlock()
		return ErrIdle
	}
	if t.pending[addRowKey] {
		t.mu.Unlock()
		t.notify.Warning(busyMessage)
		return ErrBusy
	}
	if msg := t.schema.check(t.addBuf); msg != "" {
		t.mu.Unlock()
		t.notify.Error(msg)
		return ErrValidation
	}
	values := t.addBuf.Trimmed()
	gen := t.addGen
	t.pending[addRowKey] = true
	t.mu.Unlock()

	st, err := t.source.Create(ctx, s, values)

	t.mu.Lock()
	delete(t.pending, addRowKey)
	t.mu.Unlock()

	if err != nil {
		return t.fail(ctx, s, "create", "", err)
	}

	m := t.settle("create", "", st,
		note(MsgCreated, t.schema.Resource),
		note(MsgCreateFailed, t.resourceName()))

	t.mu.Lock()
	if t.adding && t.addGen == gen {
		t.adding = false
		t.addBuf = nil
	}
	t.mu.Unlock()

	t.observer.Observe(ctx, s, m)
	return t.Refresh(ctx, s)
}
