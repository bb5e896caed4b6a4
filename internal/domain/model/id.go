// Пакет model — доменные модели MunQuest Admin Portal.
// Записи принадлежат backend; портал держит одноразовые копии.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRecord — запись из ответа backend не прошла проверку.
var ErrInvalidRecord = errors.New("некорректная запись")

// ID — непрозрачный идентификатор записи backend.
// В JSON может прийти строкой или числом, хранится всегда строкой.
type ID string

// UnmarshalJSON принимает строку или число.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("ID: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ID: ожидается строка или число: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String возвращает строковое представление идентификатора.
func (id ID) String() string {
	return string(id)
}

// requireFields проверяет, что все перечисленные поля непустые после trim.
// pairs — последовательность имя, значение.
func requireFields(kind string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%w: %s без поля %s", ErrInvalidRecord, kind, pairs[i])
		}
	}
	return nil
}
