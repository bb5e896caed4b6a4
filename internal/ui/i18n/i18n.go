// Пакет i18n — переводы интерфейса портала (en, ru).
// Язык запроса кладётся в контекст middleware; T и Tf читают его оттуда.
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// DefaultLang — язык по умолчанию и язык запасных переводов.
const DefaultLang = "en"

// Languages — коды поддерживаемых языков в порядке предпочтения.
var Languages = []string{"en", "ru"}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Russian})

type contextKey struct{}

// IsSupported проверяет код языка.
func IsSupported(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Bundle — каталоги переводов: язык → ключ → строка.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle.
func NewBundle(logger *slog.Logger) *Bundle {
	return &Bundle{
		catalogs: make(map[string]map[string]string),
		logger:   logger.With(slog.String("component", "i18n")),
	}
}

// LoadMessages загружает плоский JSON-каталог {"key": "строка"} языка lang.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}

	b.mu.Lock()
	b.catalogs[lang] = messages
	b.mu.Unlock()

	b.logger.Debug("Каталог переводов загружен",
		slog.String("lang", lang),
		slog.Int("keys", len(messages)),
	)
	return nil
}

// Translate возвращает перевод ключа. Отсутствующий перевод берётся
// из DefaultLang, а если нет и его — возвращается сам ключ.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, l := range []string{lang, DefaultLang} {
		if msg, ok := b.catalogs[l][key]; ok {
			return msg
		}
	}
	return key
}

// Translatef возвращает перевод с подстановкой аргументов.
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	template := b.Translate(lang, key)
	if len(args) == 0 {
		return template
	}
	return formatFunc(template, args...)
}

var (
	globalBundle *Bundle
	globalOnce   sync.Once
)

// Init создаёт глобальный Bundle. Повторные вызовы возвращают тот же Bundle.
func Init(logger *slog.Logger) *Bundle {
	globalOnce.Do(func() {
		globalBundle = NewBundle(logger)
	})
	return globalBundle
}

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextKey{}, lang)
}

// LangFromContext извлекает язык из контекста.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}

// T возвращает перевод ключа на язык из контекста.
func T(ctx context.Context, key string) string {
	if globalBundle == nil {
		return key
	}
	return globalBundle.Translate(LangFromContext(ctx), key)
}

// Tf возвращает перевод ключа с подстановкой аргументов.
func Tf(ctx context.Context, key string, args ...any) string {
	if globalBundle == nil {
		if len(args) == 0 {
			return key
		}
		return formatFunc(key, args...)
	}
	return globalBundle.Translatef(LangFromContext(ctx), key, args...)
}

// formatFunc — fmt.Sprintf через переменную: формат-строки приходят
// из JSON-каталогов, go vet не может их проверить.
//
//nolint:govet
var formatFunc = fmt.Sprintf

// MatchLanguage выбирает язык по заголовку Accept-Language.
func MatchLanguage(acceptLanguage string) string {
	tag, _ := language.MatchStrings(matcher, acceptLanguage)
	base, _ := tag.Base()
	if strings.HasPrefix(base.String(), "ru") {
		return "ru"
	}
	return DefaultLang
}
