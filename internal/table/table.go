// Пакет table — обобщённая фильтруемая таблица администратора с редактированием
// строк на месте. Одна реализация настраивается схемой ресурса (Schema) и
// источником данных (Source): список, поиск и фильтр по категории,
// редактирование строки, добавление строки, контекстное меню строки,
// удаление с подтверждением и доменные действия.
//
// Состояние таблицы принадлежит одной сессии браузера. Мьютекс таблицы
// не удерживается во время сетевых вызовов: строки с выполняющимся запросом
// помечаются флагом, а устаревшие ответы списка отбрасываются по номеру загрузки.
package table

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/model"
)

// AutoGenerated — подпись столбца идентификатора в строке добавления.
const AutoGenerated = "Auto generated"

// Ошибки контроллеров таблицы.
var (
	// ErrValidation — не заполнены обязательные поля; запрос не отправлялся.
	ErrValidation = errors.New("не заполнены обязательные поля")
	// ErrBusy — по строке уже выполняется запрос.
	ErrBusy = errors.New("строка занята выполняющимся запросом")
	// ErrNotFound — строка с указанным id отсутствует в коллекции.
	ErrNotFound = errors.New("строка не найдена")
	// ErrModeActive — режим добавления уже активен.
	ErrModeActive = errors.New("режим добавления уже активен")
	// ErrIdle — нет активного редактирования, добавления или удаления.
	ErrIdle = errors.New("нет активной операции")
	// ErrUnsupported — операция не поддерживается таблицей.
	ErrUnsupported = errors.New("операция не поддерживается")
)

// addRowKey — ключ флага занятости синтетической строки добавления.
const addRowKey = "\x00add"

// Notifier — поверхность уведомлений (тосты) сессии.
// message — ключ каталога переводов (Msg*) или готовый текст backend;
// args подставляются в перевод.
type Notifier interface {
	Success(message string, args ...any)
	Error(message string, args ...any)
	Warning(message string, args ...any)
}

// Mutation — итог изменяющей операции таблицы.
type Mutation struct {
	// Table — ключ таблицы
	Table string
	// Action — create, update, delete или ключ доменного действия
	Action string
	// TargetID — id строки; пустой для create
	TargetID string
	// Outcome — success, failure (success:false) или error (транспорт/HTTP)
	Outcome string
	// Message — текст показанного уведомления на английском
	Message string
}

// Observer получает итоги изменяющих операций (журнал аудита).
type Observer interface {
	Observe(ctx context.Context, s backend.Session, m Mutation)
}

type nopObserver struct{}

func (nopObserver) Observe(context.Context, backend.Session, Mutation) {}

// Source — операции backend для ресурса таблицы.
// Неподдерживаемые операции возвращают ErrUnsupported.
type Source[T any] interface {
	List(ctx context.Context, s backend.Session) (*backend.ListResult[T], error)
	Create(ctx context.Context, s backend.Session, v Values) (*backend.Status, error)
	Update(ctx context.Context, s backend.Session, id string, v Values) (*backend.Status, error)
	Delete(ctx context.Context, s backend.Session, id string) (*backend.Status, error)
	Do(ctx context.Context, s backend.Session, id, action, arg string) (*backend.Status, error)
}

// Controller — не обобщённый интерфейс таблицы для HTTP-обработчиков.
type Controller interface {
	Key() string
	FieldKeys() []string

	Open(ctx context.Context, s backend.Session) error
	Refresh(ctx context.Context, s backend.Session) error
	SetSearchTerm(term string)
	SetCategory(category string)

	ToggleMenu(id string)
	CloseMenu()
	OutsideClick(insideMenu bool)

	BeginEdit(id string) error
	SetEditValues(v Values)
	CancelEdit()
	SaveEdit(ctx context.Context, s backend.Session) error

	BeginAdd() error
	SetAddValues(v Values)
	CancelAdd()
	SaveAdd(ctx context.Context, s backend.Session) error

	RequestDelete(id string) error
	CancelDelete()
	ConfirmDelete(ctx context.Context, s backend.Session) error

	RunAction(ctx context.Context, s backend.Session, id, action, arg string) error

	View() View
}

// Table — состояние одной таблицы ресурса T в рамках сессии.
type Table[T any] struct {
	schema   Schema[T]
	source   Source[T]
	notify   Notifier
	observer Observer
	logger   *slog.Logger

	mu sync.Mutex
	// items — коллекция последней успешной загрузки
	items   []T
	loaded  bool
	loadGen uint64
	// keep — следующий Open использует текущую коллекцию
	keep bool

	search   string
	category string

	// editing — id редактируемой строки; пусто в состоянии Idle
	editing string
	editBuf Values

	adding bool
	addBuf Values
	// addGen растёт при каждом BeginAdd; SaveAdd сбрасывает только свою строку
	addGen uint64

	menuOpen string
	deleteID string
	pending  map[string]bool
}

var _ Controller = (*Table[model.Committee])(nil)

// New создаёт таблицу. observer может быть nil.
func New[T any](schema Schema[T], source Source[T], notify Notifier, observer Observer, logger *slog.Logger) *Table[T] {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Table[T]{
		schema:   schema,
		source:   source,
		notify:   notify,
		observer: observer,
		logger: logger.With(
			slog.String("component", "table"),
			slog.String("table", schema.Key),
		),
		pending: make(map[string]bool),
	}
}

// Key возвращает ключ таблицы.
func (t *Table[T]) Key() string {
	return t.schema.Key
}

// FieldKeys возвращает ключи редактируемых полей (для разбора форм).
func (t *Table[T]) FieldKeys() []string {
	keys := make([]string, 0, len(t.schema.Fields))
	for _, f := range t.schema.Fields {
		if f.Editable() {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// Open вызывается при показе страницы таблицы.
// Первый показ и каждый переход на страницу загружают коллекцию заново;
// показ сразу после действия пользователя использует текущее состояние.
func (t *Table[T]) Open(ctx context.Context, s backend.Session) error {
	t.mu.Lock()
	reuse := t.loaded && t.keep
	t.keep = false
	t.mu.Unlock()

	if reuse {
		return nil
	}
	return t.Load(ctx, s)
}

// touch отмечает действие пользователя. Вызывается под мьютексом.
func (t *Table[T]) touch() {
	t.keep = true
}

// find возвращает строку по id. Вызывается под мьютексом.
func (t *Table[T]) find(id string) (T, bool) {
	for _, item := range t.items {
		if t.schema.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// notice — ключ уведомления с аргументами.
type notice struct {
	key  string
	args []any
}

func note(key string, args ...any) notice {
	return notice{key: key, args: args}
}

// settle показывает тост по статусу backend и возвращает итог для аудита.
// Сообщение backend при success:false показывается вместо failure.
func (t *Table[T]) settle(action, id string, st *backend.Status, success, failure notice) Mutation {
	m := Mutation{Table: t.schema.Key, Action: action, TargetID: id}
	if st.Success {
		m.Outcome = model.AuditOutcomeSuccess
		m.Message = Text(success.key, success.args...)
		t.notify.Success(success.key, success.args...)
		return m
	}
	m.Outcome = model.AuditOutcomeFailure
	if strings.TrimSpace(st.Message) != "" {
		m.Message = Text(st.Message)
		t.notify.Error(st.Message)
		return m
	}
	m.Message = Text(failure.key, failure.args...)
	t.notify.Error(failure.key, failure.args...)
	return m
}

// fail обрабатывает ошибку вызова backend. Ошибки аутентификации
// не показываются: сессию очищает HTTP-слой.
func (t *Table[T]) fail(ctx context.Context, s backend.Session, action, id string, err error) error {
	if backend.IsAuthError(err) {
		return err
	}
	msg := backend.Message(err)
	t.notify.Error(msg)
	t.observer.Observe(ctx, s, Mutation{
		Table:    t.schema.Key,
		Action:   action,
		TargetID: id,
		Outcome:  model.AuditOutcomeError,
		Message:  msg,
	})
	t.logger.Warn("Операция таблицы не выполнена",
		slog.String("action", action),
		slog.String("id", id),
		slog.String("error", err.Error()),
	)
	return err
}

// resourceName — название ресурса в середине фразы.
func (t *Table[T]) resourceName() string {
	return strings.ToLower(t.schema.Resource)
}
