package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestSessionEncryptDecryptRoundTrip проверяет шифрование и дешифрование SessionData.
func TestSessionEncryptDecryptRoundTrip(t *testing.T) {
	sm, err := NewSessionManager("", false)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager: %v", err)
	}

	original := &SessionData{
		SID:         NewSID(),
		Token:       "backend-token-12345",
		UserID:      "17",
		OrganiserID: "4",
		UserRole:    "organiser",
		GlobalRole:  "admin",
		Email:       "org@munquest.test",
		ExpiresAt:   time.Now().Add(5 * time.Minute).Unix(),
	}

	encrypted, err := sm.Encrypt(original)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}
	if encrypted == "" {
		t.Fatal("Зашифрованная строка пустая")
	}

	decrypted, err := sm.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}

	if diff := cmp.Diff(original, decrypted); diff != "" {
		t.Errorf("SessionData (-want +got):\n%s", diff)
	}
}

// TestSessionManagerWithStringKey проверяет инициализацию с произвольной строкой-ключом.
func TestSessionManagerWithStringKey(t *testing.T) {
	sm, err := NewSessionManager("my-secret-key-for-testing", false)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager с string-ключом: %v", err)
	}

	data := &SessionData{Token: "token123", UserID: "1"}

	encrypted, err := sm.Encrypt(data)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	decrypted, err := sm.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}
	if decrypted.Token != data.Token {
		t.Errorf("Token: want %q, got %q", data.Token, decrypted.Token)
	}
}

// TestSessionDecryptWithWrongKey проверяет, что дешифрование чужим ключом не работает.
func TestSessionDecryptWithWrongKey(t *testing.T) {
	sm1, _ := NewSessionManager("key-one", false)
	sm2, _ := NewSessionManager("key-two", false)

	encrypted, err := sm1.Encrypt(&SessionData{Token: "secret"})
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	if _, err := sm2.Decrypt(encrypted); err == nil {
		t.Error("Ожидалась ошибка при дешифровании чужим ключом")
	}
}

// TestSessionIsExpired проверяет логику проверки истечения токена.
func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt int64
		want      bool
	}{
		{"истёк", time.Now().Add(-time.Minute).Unix(), true},
		{"действует", time.Now().Add(time.Minute).Unix(), false},
		{"без срока", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &SessionData{ExpiresAt: tt.expiresAt}
			if got := s.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSessionLegacyOrganiserKey проверяет чтение устаревшего ключа orgainiserId.
func TestSessionLegacyOrganiserKey(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"organiserId", `{"sid":"s","organiserId":"9"}`, "9"},
		{"orgainiserId", `{"sid":"s","orgainiserId":"9"}`, "9"},
		{"оба ключа", `{"sid":"s","organiserId":"9","orgainiserId":"1"}`, "9"},
		{"нет ключа", `{"sid":"s"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s SessionData
			if err := s.UnmarshalJSON([]byte(tt.json)); err != nil {
				t.Fatalf("UnmarshalJSON: %v", err)
			}
			if s.OrganiserID != tt.want {
				t.Errorf("OrganiserID = %q, want %q", s.OrganiserID, tt.want)
			}
			if s.SID != "s" {
				t.Errorf("SID = %q, want s", s.SID)
			}
		})
	}
}

// TestSessionBackend проверяет перенос данных сессии в сессию backend.
func TestSessionBackend(t *testing.T) {
	s := &SessionData{Token: "tok", UserID: "3", OrganiserID: "8", GlobalRole: "superadmin", UserRole: "organiser"}

	bs := s.Backend()
	if bs.Token != "tok" || bs.UserID != "3" || bs.OrganiserID != "8" {
		t.Errorf("Backend() = %+v", bs)
	}
	if !s.CanManagePlatform() {
		t.Error("superadmin должен управлять платформой")
	}
	if !s.CanManageOrganiser() {
		t.Error("организатор с id должен управлять своими таблицами")
	}
}

// TestSessionCookieSetAndGet проверяет установку и извлечение cookie.
func TestSessionCookieSetAndGet(t *testing.T) {
	sm, _ := NewSessionManager("test-key", false)

	data := &SessionData{
		SID:        "sid-1",
		Token:      "access-123",
		UserID:     "5",
		GlobalRole: "admin",
		ExpiresAt:  time.Now().Add(5 * time.Minute).Unix(),
	}

	w := httptest.NewRecorder()
	if err := sm.SetSessionCookie(w, data); err != nil {
		t.Fatalf("Ошибка установки cookie: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Cookie не установлен")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(cookies[0])

	got, err := sm.GetSessionFromRequest(req)
	if err != nil {
		t.Fatalf("Ошибка чтения сессии из cookie: %v", err)
	}
	if got == nil {
		t.Fatal("Сессия не найдена")
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("SessionData (-want +got):\n%s", diff)
	}

	cookie := cookies[0]
	if cookie.Name != SessionCookieName {
		t.Errorf("Cookie name: want %q, got %q", SessionCookieName, cookie.Name)
	}
	if cookie.Path != "/admin" {
		t.Errorf("Cookie path: want %q, got %q", "/admin", cookie.Path)
	}
	if !cookie.HttpOnly {
		t.Error("Cookie должен быть HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("Cookie должен быть SameSite=Lax")
	}
}

// TestSessionCookieMissing проверяет, что отсутствие cookie возвращает nil, nil.
func TestSessionCookieMissing(t *testing.T) {
	sm, _ := NewSessionManager("test-key", false)

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	data, err := sm.GetSessionFromRequest(req)
	if err != nil {
		t.Fatalf("Ожидалось nil error, получено: %v", err)
	}
	if data != nil {
		t.Error("Ожидалось nil data при отсутствии cookie")
	}
}

// TestClearSessionCookie проверяет очистку session cookie.
func TestClearSessionCookie(t *testing.T) {
	sm, _ := NewSessionManager("test-key", false)

	w := httptest.NewRecorder()
	sm.ClearSessionCookie(w)

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Cookie очистки не установлен")
	}

	cookie := cookies[0]
	if cookie.MaxAge != -1 {
		t.Errorf("MaxAge: want -1, got %d", cookie.MaxAge)
	}
	if cookie.Value != "" {
		t.Error("Value должен быть пустым")
	}
}
