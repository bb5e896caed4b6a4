package table

// ToggleMenu открывает контекстное меню строки id или закрывает его,
// если оно уже открыто. Одновременно открыто не более одного меню.
func (t *Table[T]) ToggleMenu(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	if t.menuOpen == id {
		t.menuOpen = ""
		return
	}
	t.menuOpen = id
}

// CloseMenu закрывает контекстное меню.
func (t *Table[T]) CloseMenu() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()
	t.menuOpen = ""
}

// OutsideClick закрывает меню, если действие пользователя было вне меню.
func (t *Table[T]) OutsideClick(insideMenu bool) {
	if insideMenu {
		return
	}
	t.CloseMenu()
}

// MenuOpen возвращает id строки с открытым меню или пустую строку.
func (t *Table[T]) MenuOpen() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.menuOpen
}
