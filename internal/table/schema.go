package table

import (
	"strconv"
	"strings"
)

// FieldKind — вид поля таблицы.
type FieldKind int

const (
	// FieldText — текстовое поле.
	FieldText FieldKind = iota
	// FieldSelect — выбор из списка вариантов.
	FieldSelect
	// FieldNumber — целое число.
	FieldNumber
	// FieldReadOnly — поле только для отображения.
	FieldReadOnly
)

// Choice — вариант значения поля или аргумента действия.
type Choice struct {
	Value string
	Label string
}

// Field — столбец таблицы.
type Field struct {
	Key      string
	Label    string
	Kind     FieldKind
	Required bool
	// Default — начальное значение в строке добавления
	Default string
	// Choices — варианты для FieldSelect; вызывается при каждом рендере
	Choices func() []Choice
}

// Editable сообщает, редактируется ли поле.
func (f Field) Editable() bool {
	return f.Kind != FieldReadOnly
}

// Action — доменное действие контекстного меню строки.
type Action[T any] struct {
	Key   string
	Label string
	// Success — ключ уведомления при success:true; пусто — MsgUpdated
	Success string
	// Visible — показывать ли действие для строки; nil — всегда
	Visible func(item T) bool
	// Choices — варианты аргумента действия (например, назначаемые роли)
	Choices func(item T) []Choice
}

// Schema — настройка таблицы под ресурс T.
type Schema[T any] struct {
	// Key — ключ таблицы (committees, users, ...)
	Key string
	// Title — заголовок страницы
	Title string
	// Resource — название записи в тостах (Committee, User, ...)
	Resource string
	Fields   []Field
	// Searchable — ключи полей, по которым работает поиск
	Searchable []string
	// Categories — варианты фильтра по категории; пусто — фильтра нет
	Categories []Choice

	ID     func(item T) string
	Values func(item T) Values
	// Category — категория записи для фильтра; nil — фильтра нет
	Category func(item T) string

	CanAdd    bool
	CanEdit   bool
	CanDelete bool
	Actions   []Action[T]
}

// action возвращает действие по ключу.
func (s Schema[T]) action(key string) (Action[T], bool) {
	for _, a := range s.Actions {
		if a.Key == key {
			return a, true
		}
	}
	return Action[T]{}, false
}

// defaults возвращает начальный буфер строки добавления.
func (s Schema[T]) defaults() Values {
	v := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		if f.Editable() {
			v[f.Key] = f.Default
		}
	}
	return v
}

// editable возвращает редактируемые значения записи.
func (s Schema[T]) editable(item T) Values {
	all := s.Values(item)
	v := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		if f.Editable() {
			v[f.Key] = all[f.Key]
		}
	}
	return v
}

// missingRequired возвращает ключи обязательных полей, пустых после trim.
func (s Schema[T]) missingRequired(v Values) []string {
	var missing []string
	for _, f := range s.Fields {
		if f.Required && f.Editable() && strings.TrimSpace(v[f.Key]) == "" {
			missing = append(missing, f.Key)
		}
	}
	return missing
}

// check проверяет буфер перед отправкой и возвращает сообщение об ошибке
// или пустую строку. Числовые поля должны быть положительными целыми.
func (s Schema[T]) check(v Values) string {
	if len(s.missingRequired(v)) > 0 {
		return ValidationMessage
	}
	for _, f := range s.Fields {
		if f.Kind != FieldNumber {
			continue
		}
		raw := strings.TrimSpace(v[f.Key])
		if raw == "" {
			continue
		}
		if n, err := strconv.Atoi(raw); err != nil || n <= 0 {
			return NumberMessage
		}
	}
	return ""
}

// Values — значения полей строки по ключу поля.
type Values map[string]string

// Clone возвращает копию значений.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Trimmed возвращает копию значений без пробелов по краям.
func (v Values) Trimmed() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = strings.TrimSpace(val)
	}
	return out
}
