package table

import "strings"

// Filter возвращает записи категории category, у которых хотя бы одно
// поле из searchable содержит term без учёта регистра.
// Пустой term — все записи категории; пустая category — все категории.
func Filter[T any](items []T, schema Schema[T], category, term string) []T {
	needle := strings.ToLower(term)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if category != "" && schema.Category != nil && schema.Category(item) != category {
			continue
		}
		if needle != "" && !matches(schema.Values(item), schema.Searchable, needle) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// matches проверяет вхождение needle (в нижнем регистре) в одно из полей.
func matches(values Values, keys []string, needle string) bool {
	for _, k := range keys {
		if strings.Contains(strings.ToLower(values[k]), needle) {
			return true
		}
	}
	return false
}

// SetSearchTerm задаёт строку поиска.
func (t *Table[T]) SetSearchTerm(term string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.search = term
	t.touch()
}

// SetCategory задаёт фильтр по категории; пустая строка — все категории.
// Неизвестная категория сбрасывает фильтр.
func (t *Table[T]) SetCategory(category string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.category = ""
	for _, c := range t.schema.Categories {
		if c.Value == category {
			t.category = category
		}
	}
	t.touch()
}

// Filtered возвращает текущее отфильтрованное представление коллекции.
func (t *Table[T]) Filtered() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Filter(t.items, t.schema, t.category, t.search)
}
