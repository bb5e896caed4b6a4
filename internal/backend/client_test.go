package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/munquest/admin-portal/internal/domain/model"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupMockBackend создаёт mock HTTP-сервер backend и клиент к нему.
func setupMockBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewWithHTTPClient(server.URL+"/", server.Client(), testLogger())
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	return client
}

// writeJSON пишет JSON-ответ mock-сервера.
func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

var testSession = Session{Token: "tok-123", OrganiserID: "7"}

func TestListCommittees_Success(t *testing.T) {
	client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, ожидается GET", r.Method)
		}
		if r.URL.Path != "/api/v1/committees/all-committees" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, ожидается application/json для чтения", got)
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":[
			{"id":1,"abbr":"UNSC","committee":"Security Council","category":"country"},
			{"id":"2","abbr":"WHO","committee":"World Health Organization","category":"country"}
		]}`)
	})

	result, err := client.ListCommittees(context.Background(), testSession)
	if err != nil {
		t.Fatalf("ListCommittees: %v", err)
	}
	if !result.Success {
		t.Error("Success = false")
	}

	want := []model.Committee{
		{ID: "1", Abbr: "UNSC", Committee: "Security Council", Category: "country"},
		{ID: "2", Abbr: "WHO", Committee: "World Health Organization", Category: "country"},
	}
	if diff := cmp.Diff(want, result.Items); diff != "" {
		t.Errorf("Items (-want +got):\n%s", diff)
	}
}

func TestListCommittees_MissingDataIsEmpty(t *testing.T) {
	client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})

	result, err := client.ListCommittees(context.Background(), testSession)
	if err != nil {
		t.Fatalf("ListCommittees: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("Items = %v, ожидается пусто", result.Items)
	}
}

func TestListCommittees_RejectsInvalidRecords(t *testing.T) {
	client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[
			{"id":1,"abbr":"UNSC","committee":"Security Council","category":"country"},
			{"id":2,"abbr":"","committee":"No abbreviation","category":"country"},
			{"id":3,"abbr":"X","committee":"Unknown","category":"planet"}
		]}`)
	})

	result, err := client.ListCommittees(context.Background(), testSession)
	if err != nil {
		t.Fatalf("ListCommittees: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != "1" {
		t.Errorf("Items = %+v, ожидается одна запись id=1", result.Items)
	}
	if result.Rejected != 2 {
		t.Errorf("Rejected = %d, ожидается 2", result.Rejected)
	}
}

func TestListCommittees_SchemaViolation(t *testing.T) {
	client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":"yes","data":{}}`)
	})

	_, err := client.ListCommittees(context.Background(), testSession)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("ожидается ErrInvalidResponse, получено %v", err)
	}
}

func TestListCommittees_LogicalFailure(t *testing.T) {
	client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"message":"Not allowed for this event"}`)
	})

	result, err := client.ListCommittees(context.Background(), testSession)
	if err != nil {
		t.Fatalf("ListCommittees: %v", err)
	}
	if result.Success {
		t.Error("Success = true, ожидается false")
	}
	if result.Message != "Not allowed for this event" {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestCreateCommittee_SendsBody(t *testing.T) {
	client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/committees/create-committee" {
			t.Errorf("запрос %s %s", r.Method, r.URL.Path)
		}
		var in CommitteeInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		want := CommitteeInput{Abbr: "UNSC", Committee: "Security Council", Category: "country"}
		if diff := cmp.Diff(want, in); diff != "" {
			t.Errorf("body (-want +got):\n%s", diff)
		}
		writeJSON(w, http.StatusCreated, `{"success":true,"message":"Committee created"}`)
	})

	st, err := client.CreateCommittee(context.Background(), testSession,
		CommitteeInput{Abbr: "UNSC", Committee: "Security Council", Category: "country"})
	if err != nil {
		t.Fatalf("CreateCommittee: %v", err)
	}
	if !st.Success || st.Message != "Committee created" {
		t.Errorf("Status = %+v", st)
	}
}

func TestMutations_MethodsAndPaths(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func(c *Client) (*Status, error)
		method string
		path   string
	}{
		{"update committee", func(c *Client) (*Status, error) {
			return c.UpdateCommittee(ctx, testSession, "5", CommitteeInput{})
		}, http.MethodPatch, "/api/v1/committees/update-committee/5"},
		{"delete committee", func(c *Client) (*Status, error) {
			return c.DeleteCommittee(ctx, testSession, "5")
		}, http.MethodDelete, "/api/v1/committees/delete-committee/5"},
		{"update leadership role", func(c *Client) (*Status, error) {
			return c.UpdateLeadershipRole(ctx, testSession, "3", LeadershipRoleInput{})
		}, http.MethodPatch, "/api/v1/leadership-roles/update-leadership-role/3"},
		{"user status", func(c *Client) (*Status, error) {
			return c.UpdateUserStatus(ctx, testSession, "9", model.UserStatusBlocked)
		}, http.MethodPatch, "/api/v1/users/update-user-status/9"},
		{"global role", func(c *Client) (*Status, error) {
			return c.UpdateGlobalRole(ctx, testSession, "9", "admin")
		}, http.MethodPatch, "/api/v1/users/update-global-role/9"},
		{"delete user", func(c *Client) (*Status, error) {
			return c.DeleteUser(ctx, testSession, "9")
		}, http.MethodDelete, "/api/v1/users/delete-user/9"},
		{"event ranking", func(c *Client) (*Status, error) {
			return c.UpdateEventRanking(ctx, testSession, "e1", []RankingItem{{ID: "1", Ranking: 1}})
		}, http.MethodPatch, "/api/v1/events/e1/leadership-roles/update-ranking"},
		{"create event role", func(c *Client) (*Status, error) {
			return c.CreateEventLeadershipRole(ctx, testSession, "e1", EventLeadershipRoleInput{LeadershipRoleID: "2"})
		}, http.MethodPost, "/api/v1/events/e1/leadership-roles/create-leadership-role"},
		{"organiser committee", func(c *Client) (*Status, error) {
			return c.UpdateOrganiserCommittee(ctx, testSession, "4", OrganiserCommitteeInput{CommitteeID: "1", Seats: 20})
		}, http.MethodPatch, "/api/v1/organisers/7/committees/update-committee/4"},
		{"organiser role", func(c *Client) (*Status, error) {
			return c.DeleteOrganiserLeadershipRole(ctx, testSession, "8")
		}, http.MethodDelete, "/api/v1/organisers/7/leadership-roles/delete-leadership-role/8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != tt.method {
					t.Errorf("method = %s, ожидается %s", r.Method, tt.method)
				}
				if r.URL.Path != tt.path {
					t.Errorf("path = %s, ожидается %s", r.URL.Path, tt.path)
				}
				writeJSON(w, http.StatusOK, `{"success":true}`)
			})

			st, err := tt.call(client)
			if err != nil {
				t.Fatalf("ошибка: %v", err)
			}
			if !st.Success {
				t.Error("Success = false")
			}
		})
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantFields map[string]string
	}{
		{"message", 400, `{"message":"Abbreviation taken"}`, "Abbreviation taken", nil},
		{"error object", 400, `{"error":{"message":"Bad category"}}`, "Bad category", nil},
		{"error string", 409, `{"error":"Duplicate"}`, "Duplicate", nil},
		{"errors list", 422, `{"errors":[{"message":"Seats must be positive"}]}`, "Seats must be positive", nil},
		{"errors map", 422, `{"errors":{"email":"Invalid email"}}`, DefaultErrorMessage, map[string]string{"email": "Invalid email"}},
		{"not json", 502, `<html>bad gateway</html>`, DefaultErrorMessage, nil},
		{"empty", 500, ``, DefaultErrorMessage, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := client.DeleteCommittee(context.Background(), testSession, "1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("ожидается *APIError, получено %v", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, ожидается %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, ожидается %q", apiErr.Message, tt.wantMsg)
			}
			if diff := cmp.Diff(tt.wantFields, apiErr.Fields); diff != "" {
				t.Errorf("Fields (-want +got):\n%s", diff)
			}
			if Message(err) != tt.wantMsg {
				t.Errorf("Message(err) = %q", Message(err))
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"401", &APIError{Status: 401, Message: "Unauthorized"}, true},
		{"403 token", &APIError{Status: 403, Message: "Invalid token"}, true},
		{"403 expired", &APIError{Status: 403, Message: "Session expired"}, true},
		{"403 permission", &APIError{Status: 403, Message: "Forbidden for organisers"}, false},
		{"500", &APIError{Status: 500, Message: "token store down"}, false},
		{"transport", &APIError{Message: networkErrorMessage, Err: io.EOF}, false},
		{"wrapped", fmt.Errorf("load: %w", &APIError{Status: 401}), true},
		{"plain", errors.New("token"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError(%v) = %v, ожидается %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewWithHTTPClient(url, &http.Client{Timeout: time.Second}, testLogger())
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}

	_, err = client.ListUsers(context.Background(), testSession)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ожидается *APIError, получено %v", err)
	}
	if apiErr.Status != 0 {
		t.Errorf("Status = %d, ожидается 0", apiErr.Status)
	}
	if apiErr.Message != networkErrorMessage {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if IsAuthError(err) {
		t.Error("ошибка транспорта не должна быть ошибкой аутентификации")
	}
}

func TestLogin_LegacyOrganiserKey(t *testing.T) {
	tests := []struct {
		name string
		user string
	}{
		{"organiserId", `{"id":10,"role":"organiser","globalRole":"user","organiserId":77}`},
		{"orgainiserId", `{"id":10,"role":"organiser","globalRole":"user","orgainiserId":77}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "" {
					t.Error("вход не должен нести Authorization")
				}
				writeJSON(w, http.StatusOK, `{"success":true,"data":{"token":"jwt","user":`+tt.user+`}}`)
			})

			env, err := client.Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			want := LoginUser{ID: "10", Role: "organiser", GlobalRole: "user", OrganiserID: "77"}
			if diff := cmp.Diff(want, env.Data.User); diff != "" {
				t.Errorf("User (-want +got):\n%s", diff)
			}
			if env.Data.Token != "jwt" {
				t.Errorf("Token = %q", env.Data.Token)
			}
		})
	}
}

func TestCheckReady(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"ok", http.StatusNotFound, "ok"},
		{"degraded", http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			if got, _ := client.CheckReady(); got != tt.want {
				t.Errorf("CheckReady() = %q, ожидается %q", got, tt.want)
			}
		})
	}
}
