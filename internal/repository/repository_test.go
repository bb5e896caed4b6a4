package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/munquest/admin-portal/internal/config"
	"github.com/munquest/admin-portal/internal/database"
	"github.com/munquest/admin-portal/internal/domain/model"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("munquest_test"),
		postgres.WithUsername("munquest"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	t.Setenv("MQ_BACKEND_URL", "http://localhost:4000")
	t.Setenv("MQ_DB_HOST", host)
	t.Setenv("MQ_DB_PORT", port.Port())
	t.Setenv("MQ_DB_NAME", "munquest_test")
	t.Setenv("MQ_DB_USER", "munquest")
	t.Setenv("MQ_DB_PASSWORD", "test-password")
	t.Setenv("MQ_DB_SSL_MODE", "disable")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

func newEntry(resource, actor, message string, at time.Time) *model.AuditEntry {
	return &model.AuditEntry{
		ID:        uuid.New().String(),
		Actor:     actor,
		Resource:  resource,
		Action:    "update",
		TargetID:  "42",
		Outcome:   model.AuditOutcomeSuccess,
		Message:   message,
		CreatedAt: at,
	}
}

func TestAuditLogInsertAndList(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewAuditLogRepository(pool)

	base := time.Now().UTC().Truncate(time.Second)
	entries := []*model.AuditEntry{
		newEntry("committees", "u1", "Committee updated successfully", base.Add(-2*time.Minute)),
		newEntry("users", "u2", "User blocked successfully", base.Add(-time.Minute)),
		newEntry("committees", "u1", "Abbreviation 100%_unique", base),
	}
	for _, e := range entries {
		if err := repo.Insert(ctx, e); err != nil {
			t.Fatalf("Insert() ошибка: %v", err)
		}
	}

	// Повторная вставка с тем же ID — конфликт
	if err := repo.Insert(ctx, entries[0]); !errors.Is(err, ErrConflict) {
		t.Errorf("повторный Insert() = %v, ожидали ErrConflict", err)
	}

	all, err := repo.List(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() вернул %d записей, хотели 3", len(all))
	}
	if all[0].ID != entries[2].ID {
		t.Errorf("первая запись %s, ожидали самую новую %s", all[0].ID, entries[2].ID)
	}

	committees, err := repo.List(ctx, AuditFilter{Resource: "committees"})
	if err != nil {
		t.Fatalf("List(committees) ошибка: %v", err)
	}
	if len(committees) != 2 {
		t.Errorf("List(committees) вернул %d, хотели 2", len(committees))
	}

	found, err := repo.List(ctx, AuditFilter{Search: "BLOCKED"})
	if err != nil {
		t.Fatalf("List(search) ошибка: %v", err)
	}
	if len(found) != 1 || found[0].Actor != "u2" {
		t.Errorf("поиск без учёта регистра вернул %+v", found)
	}

	// % и _ ищутся буквально
	literal, err := repo.List(ctx, AuditFilter{Search: "100%_"})
	if err != nil {
		t.Fatalf("List(literal) ошибка: %v", err)
	}
	if len(literal) != 1 {
		t.Errorf("List(100%%_) вернул %d, хотели 1", len(literal))
	}

	limited, err := repo.List(ctx, AuditFilter{Limit: 1})
	if err != nil {
		t.Fatalf("List(limit) ошибка: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("List(limit=1) вернул %d", len(limited))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() ошибка: %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, хотели 3", count)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"50%", `50\%`},
		{"a_b", `a\_b`},
		{`c:\dir`, `c:\\dir`},
	}
	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, хотели %q", tt.in, got, tt.want)
		}
	}
}
