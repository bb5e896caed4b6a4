package i18n

import "net/http"

// LangCookieName — cookie с выбранным пользователем языком.
const LangCookieName = "lang"

// Middleware определяет язык запроса и кладёт его в контекст.
// Приоритет: cookie lang, затем Accept-Language, затем DefaultLang.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), detectLanguage(r))))
		})
	}
}

func detectLanguage(r *http.Request) string {
	if cookie, err := r.Cookie(LangCookieName); err == nil && IsSupported(cookie.Value) {
		return cookie.Value
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return MatchLanguage(accept)
	}
	return DefaultLang
}
