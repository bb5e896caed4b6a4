package i18n

import (
	"embed"
	"fmt"
)

// localeFS — JSON-каталоги переводов locales/<lang>.json.
//
//go:embed locales/*.json
var localeFS embed.FS

// LoadEmbedded загружает в bundle каталоги всех языков Languages.
func LoadEmbedded(bundle *Bundle) error {
	for _, lang := range Languages {
		path := fmt.Sprintf("locales/%s.json", lang)
		data, err := localeFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("i18n: не удалось прочитать %s: %w", path, err)
		}
		if err := bundle.LoadMessages(lang, data); err != nil {
			return err
		}
	}
	return nil
}
