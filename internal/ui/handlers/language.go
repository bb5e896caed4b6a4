// language.go — переключение языка интерфейса.
package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/munquest/admin-portal/internal/ui/i18n"
)

// langCookieMaxAge — срок хранения выбранного языка (1 год).
const langCookieMaxAge = 365 * 24 * time.Hour

// HandleSetLanguage обрабатывает POST /admin/set-language.
// Сохраняет язык в cookie и возвращает на страницу, с которой пришёл запрос.
func HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if !i18n.IsSupported(lang) {
		lang = i18n.DefaultLang
	}

	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   int(langCookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, backTarget(r), http.StatusSeeOther)
}

// backTarget возвращает путь из Referer того же хоста или главную страницу.
func backTarget(r *http.Request) string {
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return DashboardPath
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
