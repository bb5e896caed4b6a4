package table

// Column — заголовок столбца.
type Column struct {
	Key   string
	Label string
}

// Cell — ячейка строки.
type Cell struct {
	Key   string
	Value string
	// Display — текст для режима чтения (подпись варианта для FieldSelect)
	Display  string
	Kind     FieldKind
	Required bool
	Choices  []Choice
}

// MenuItem — пункт контекстного меню строки.
type MenuItem struct {
	Key     string
	Label   string
	Choices []Choice
}

// Row — строка представления таблицы.
type Row struct {
	ID    string
	Cells []Cell
	// Editing — ячейки привязаны к буферу редактирования
	Editing  bool
	MenuOpen bool
	Pending  bool
	Actions  []MenuItem
}

// View — неизменяемый снимок таблицы для рендера.
type View struct {
	Key      string
	Title    string
	Resource string
	Columns  []Column
	Rows     []Row
	// AddRow — синтетическая строка добавления; nil вне Adding
	AddRow *Row
	Adding bool

	CanAdd    bool
	CanEdit   bool
	CanDelete bool

	Search     string
	Category   string
	Categories []Choice

	// DeleteID — строка, ожидающая подтверждения удаления
	DeleteID    string
	DeleteLabel string

	Loaded bool
	Total  int
}

// AddDisabled сообщает, что кнопка добавления неактивна.
func (v View) AddDisabled() bool {
	return !v.CanAdd || v.Adding
}

// View строит снимок таблицы: отфильтрованные строки в режиме чтения
// или редактирования, синтетическую строку добавления, состояние меню.
func (t *Table[T]) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := View{
		Key:        t.schema.Key,
		Title:      t.schema.Title,
		Resource:   t.schema.Resource,
		Adding:     t.adding,
		CanAdd:     t.schema.CanAdd,
		CanEdit:    t.schema.CanEdit,
		CanDelete:  t.schema.CanDelete,
		Search:     t.search,
		Category:   t.category,
		Categories: t.schema.Categories,
		DeleteID:   t.deleteID,
		Loaded:     t.loaded,
		Total:      len(t.items),
	}

	for _, f := range t.schema.Fields {
		v.Columns = append(v.Columns, Column{Key: f.Key, Label: f.Label})
	}

	for _, item := range Filter(t.items, t.schema, t.category, t.search) {
		id := t.schema.ID(item)
		values := t.schema.Values(item)
		editing := id == t.editing
		if editing {
			values = mergeValues(values, t.editBuf)
		}

		row := Row{
			ID:       id,
			Cells:    t.cells(values),
			Editing:  editing,
			MenuOpen: id == t.menuOpen,
			Pending:  t.pending[id],
			Actions:  t.menuItems(item),
		}
		v.Rows = append(v.Rows, row)
	}

	// Подпись окна удаления не зависит от фильтра: строка может быть скрыта.
	if t.deleteID != "" {
		v.DeleteLabel = t.deleteID
		if item, ok := t.find(t.deleteID); ok {
			v.DeleteLabel = firstNonEmpty(t.schema.Values(item), t.schema.Searchable, t.deleteID)
		}
	}

	if t.adding {
		v.AddRow = &Row{
			ID:      AutoGenerated,
			Cells:   t.cells(t.addBuf),
			Editing: true,
			Pending: t.pending[addRowKey],
		}
	}
	return v
}

// cells строит ячейки по значениям.
func (t *Table[T]) cells(values Values) []Cell {
	cells := make([]Cell, 0, len(t.schema.Fields))
	for _, f := range t.schema.Fields {
		c := Cell{
			Key:      f.Key,
			Value:    values[f.Key],
			Display:  values[f.Key],
			Kind:     f.Kind,
			Required: f.Required,
		}
		if f.Choices != nil {
			c.Choices = f.Choices()
			for _, ch := range c.Choices {
				if ch.Value == c.Value {
					c.Display = ch.Label
				}
			}
		}
		cells = append(cells, c)
	}
	return cells
}

// menuItems возвращает доменные действия, доступные для строки.
func (t *Table[T]) menuItems(item T) []MenuItem {
	var items []MenuItem
	for _, a := range t.schema.Actions {
		if a.Visible != nil && !a.Visible(item) {
			continue
		}
		mi := MenuItem{Key: a.Key, Label: a.Label}
		if a.Choices != nil {
			mi.Choices = a.Choices(item)
		}
		items = append(items, mi)
	}
	return items
}

func mergeValues(base, over Values) Values {
	out := base.Clone()
	if out == nil {
		out = make(Values, len(over))
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func firstNonEmpty(values Values, keys []string, fallback string) string {
	for _, k := range keys {
		if values[k] != "" {
			return values[k]
		}
	}
	return fallback
}
