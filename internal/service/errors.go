// errors.go — ошибки сервисного слоя.
package service

import "errors"

var (
	// ErrCatalogUnavailable — справочник не загружен с backend.
	ErrCatalogUnavailable = errors.New("справочник недоступен")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
)
