package backend

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiSpec []byte

// schemaSet — схемы ответов backend из встроенного OpenAPI-документа.
type schemaSet struct {
	doc *openapi3.T
}

// loadSchemas загружает и проверяет встроенный OpenAPI-документ.
func loadSchemas() (*schemaSet, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("загрузка схем ответов backend: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("проверка схем ответов backend: %w", err)
	}
	return &schemaSet{doc: doc}, nil
}

// Validate проверяет JSON-тело по схеме name.
func (s *schemaSet) Validate(name string, body []byte) error {
	ref, ok := s.doc.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return fmt.Errorf("схема %q не найдена", name)
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("разбор JSON: %w", err)
	}
	return ref.Value.VisitJSON(value)
}
