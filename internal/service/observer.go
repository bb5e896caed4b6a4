package service

import (
	"context"

	"github.com/munquest/admin-portal/internal/backend"
	"github.com/munquest/admin-portal/internal/table"
)

// observers рассылает итоги операций нескольким наблюдателям.
type observers []table.Observer

// Observers объединяет наблюдателей; nil-элементы пропускаются.
func Observers(list ...table.Observer) table.Observer {
	var out observers
	for _, o := range list {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

// Observe передаёт итог каждому наблюдателю по порядку.
func (o observers) Observe(ctx context.Context, s backend.Session, m table.Mutation) {
	for _, obs := range o {
		obs.Observe(ctx, s, m)
	}
}
