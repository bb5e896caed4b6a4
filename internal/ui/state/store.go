// Пакет state — хранилище состояния сессий: таблицы и очередь уведомлений.
// Обёртка над hashicorp/golang-lru/v2/expirable: сессия вытесняется
// по TTL или при переполнении.
package state

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/munquest/admin-portal/internal/table"
	"github.com/munquest/admin-portal/internal/ui/toast"
)

// Prometheus-метрики хранилища.
var (
	sessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mq_state_sessions_created_total",
		Help: "Общее количество созданных состояний сессий.",
	})
	sessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mq_state_sessions_evicted_total",
		Help: "Общее количество вытесненных состояний сессий.",
	})
)

// Session — состояние одной сессии браузера.
type Session struct {
	// Toasts — очередь уведомлений сессии
	Toasts *toast.Queue

	mu     sync.Mutex
	tables map[string]table.Controller
}

// Table возвращает таблицу key, создавая её при первом обращении.
// create получает очередь уведомлений сессии.
func (s *Session) Table(key string, create func(n table.Notifier) table.Controller) table.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.tables[key]; ok {
		return c
	}
	c := create(s.Toasts)
	s.tables[key] = c
	return c
}

// Forget удаляет таблицу key (например, при смене мероприятия).
func (s *Session) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, key)
}

// Keys возвращает ключи созданных таблиц сессии.
func (s *Session) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.tables))
	for k := range s.tables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store — хранилище состояний сессий с TTL.
type Store struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, *Session]
	logger *slog.Logger
}

// NewStore создаёт хранилище.
// maxSize — максимальное количество сессий; ttl — время жизни состояния.
func NewStore(maxSize int, ttl time.Duration, logger *slog.Logger) *Store {
	logger = logger.With(slog.String("component", "state_store"))
	onEvict := func(sid string, _ *Session) {
		sessionsEvictedTotal.Inc()
		logger.Debug("Состояние сессии вытеснено", slog.String("sid", sid))
	}
	return &Store{
		cache:  expirable.NewLRU[string, *Session](maxSize, onEvict, ttl),
		logger: logger,
	}
}

// Get возвращает состояние сессии sid, создавая его при отсутствии.
func (st *Store) Get(sid string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.cache.Get(sid); ok {
		return s
	}
	s := &Session{
		Toasts: toast.NewQueue(),
		tables: make(map[string]table.Controller),
	}
	st.cache.Add(sid, s)
	sessionsCreatedTotal.Inc()
	return s
}

// Peek возвращает состояние сессии без создания.
func (st *Store) Peek(sid string) (*Session, bool) {
	return st.cache.Peek(sid)
}

// Drop удаляет состояние сессии (выход из системы).
func (st *Store) Drop(sid string) {
	st.cache.Remove(sid)
}

// Len возвращает количество сессий в хранилище.
func (st *Store) Len() int {
	return st.cache.Len()
}
