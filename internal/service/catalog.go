// catalog.go — общие справочники портала: населённые пункты, школы,
// каталоги руководящих ролей и комитетов. Обновляются явно вызывающим
// кодом (вход, открытие таблиц, успешные изменения каталогов).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/domain/model"
	"github.com/munquest/admin-portal/internal/table"
)

// Catalog — справочники, общие для всех сессий.
type Catalog struct {
	client *backend.Client
	logger *slog.Logger

	mu          sync.RWMutex
	localities  []model.Locality
	schools     []model.School
	roles       []model.LeadershipRole
	committees  []model.Committee
	refreshedAt time.Time
}

// NewCatalog создаёт пустой справочник.
func NewCatalog(client *backend.Client, logger *slog.Logger) *Catalog {
	return &Catalog{
		client: client,
		logger: logger.With(slog.String("component", "catalog")),
	}
}

// fetchPart загружает одну часть справочника.
func fetchPart[T any](ctx context.Context, s backend.Session, name string,
	fetch func(context.Context, backend.Session) (*backend.ListResult[T], error),
) ([]T, error) {
	res, err := fetch(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s: %s", ErrCatalogUnavailable, name, res.Message)
	}
	return res.Items, nil
}

// Refresh загружает все справочники. Части, которые не удалось загрузить,
// сохраняют прежние данные; ошибки объединяются.
func (c *Catalog) Refresh(ctx context.Context, s backend.Session) error {
	localities, errLoc := fetchPart(ctx, s, "localities", c.client.ListLocalities)
	schools, errSch := fetchPart(ctx, s, "schools", c.client.ListSchools)
	errRoles := c.RefreshLeadershipRoles(ctx, s)
	errCom := c.RefreshCommittees(ctx, s)

	c.mu.Lock()
	if errLoc == nil {
		c.localities = localities
	}
	if errSch == nil {
		c.schools = schools
	}
	c.refreshedAt = time.Now()
	c.mu.Unlock()

	err := errors.Join(errLoc, errSch, errRoles, errCom)
	if err != nil {
		c.logger.Warn("Справочники загружены не полностью",
			slog.String("error", err.Error()),
		)
		return err
	}
	c.logger.Debug("Справочники обновлены")
	return nil
}

// EnsureLoaded загружает справочники, если они ещё не загружались.
func (c *Catalog) EnsureLoaded(ctx context.Context, s backend.Session) error {
	c.mu.RLock()
	loaded := !c.refreshedAt.IsZero()
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Refresh(ctx, s)
}

// RefreshLeadershipRoles обновляет каталог руководящих ролей.
func (c *Catalog) RefreshLeadershipRoles(ctx context.Context, s backend.Session) error {
	roles, err := fetchPart(ctx, s, "leadership roles", c.client.ListLeadershipRoles)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.roles = roles
	c.mu.Unlock()
	return nil
}

// RefreshCommittees обновляет каталог комитетов.
func (c *Catalog) RefreshCommittees(ctx context.Context, s backend.Session) error {
	committees, err := fetchPart(ctx, s, "committees", c.client.ListCommittees)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.committees = committees
	c.mu.Unlock()
	return nil
}

// Observe обновляет каталог после успешного изменения таблицы каталога.
func (c *Catalog) Observe(ctx context.Context, s backend.Session, m table.Mutation) {
	if m.Outcome != model.AuditOutcomeSuccess {
		return
	}
	var err error
	switch m.Table {
	case KeyCommittees:
		err = c.RefreshCommittees(ctx, s)
	case KeyLeadershipRoles:
		err = c.RefreshLeadershipRoles(ctx, s)
	default:
		return
	}
	if err != nil {
		c.logger.Warn("Не удалось обновить каталог",
			slog.String("table", m.Table),
			slog.String("error", err.Error()),
		)
	}
}

// Localities возвращает копию справочника населённых пунктов.
func (c *Catalog) Localities() []model.Locality {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Locality(nil), c.localities...)
}

// Schools возвращает копию справочника школ.
func (c *Catalog) Schools() []model.School {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.School(nil), c.schools...)
}

// LeadershipRoles возвращает копию каталога руководящих ролей.
func (c *Catalog) LeadershipRoles() []model.LeadershipRole {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.LeadershipRole(nil), c.roles...)
}

// Committees возвращает копию каталога комитетов.
func (c *Catalog) Committees() []model.Committee {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Committee(nil), c.committees...)
}

// RefreshedAt возвращает время последнего обновления.
func (c *Catalog) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// LeadershipRoleChoices — варианты выбора руководящей роли.
func (c *Catalog) LeadershipRoleChoices() []table.Choice {
	roles := c.LeadershipRoles()
	out := make([]table.Choice, 0, len(roles))
	for _, r := range roles {
		out = append(out, table.Choice{
			Value: r.ID.String(),
			Label: fmt.Sprintf("%s (%s)", r.Abbr, r.LeadershipRole),
		})
	}
	return out
}

// CommitteeChoices — варианты выбора комитета.
func (c *Catalog) CommitteeChoices() []table.Choice {
	committees := c.Committees()
	out := make([]table.Choice, 0, len(committees))
	for _, cm := range committees {
		out = append(out, table.Choice{
			Value: cm.ID.String(),
			Label: fmt.Sprintf("%s (%s)", cm.Abbr, cm.Committee),
		})
	}
	return out
}

// SchoolsIn возвращает школы населённого пункта localityID.
func (c *Catalog) SchoolsIn(localityID string) []model.School {
	var out []model.School
	for _, s := range c.Schools() {
		if s.LocalityID.String() == localityID {
			out = append(out, s)
		}
	}
	return out
}
