// Пакет toast — очередь уведомлений сессии.
// Уведомления копятся между запросами и выводятся следующей страницей.
package toast

import "sync"

// Level — уровень уведомления.
type Level string

// Уровни уведомлений.
const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelLoading Level = "loading"
)

// maxQueued — максимальная длина очереди; старые уведомления вытесняются.
const maxQueued = 20

// Toast — одно уведомление.
type Toast struct {
	Level Level
	// Message — ключ каталога переводов или готовый текст
	Message string
	// Args подставляются в перевод Message
	Args []any
}

// Queue — потокобезопасная очередь уведомлений одной сессии.
type Queue struct {
	mu    sync.Mutex
	items []Toast
}

// NewQueue создаёт пустую очередь.
func NewQueue() *Queue {
	return &Queue{}
}

// Push добавляет уведомление. Пустые сообщения игнорируются.
func (q *Queue) Push(level Level, message string, args ...any) {
	if message == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, Toast{Level: level, Message: message, Args: args})
	if len(q.items) > maxQueued {
		q.items = q.items[len(q.items)-maxQueued:]
	}
}

// Success добавляет уведомление об успехе.
func (q *Queue) Success(message string, args ...any) { q.Push(LevelSuccess, message, args...) }

// Error добавляет уведомление об ошибке.
func (q *Queue) Error(message string, args ...any) { q.Push(LevelError, message, args...) }

// Warning добавляет предупреждение.
func (q *Queue) Warning(message string, args ...any) { q.Push(LevelWarning, message, args...) }

// Info добавляет информационное уведомление.
func (q *Queue) Info(message string, args ...any) { q.Push(LevelInfo, message, args...) }

// Loading добавляет уведомление о выполняющейся операции.
func (q *Queue) Loading(message string, args ...any) { q.Push(LevelLoading, message, args...) }

// Drain возвращает накопленные уведомления и очищает очередь.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len возвращает количество уведомлений в очереди.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
