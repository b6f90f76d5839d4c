package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plcassist/backend/internal/app"
	"github.com/plcassist/backend/internal/config"
	"github.com/plcassist/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// testEnv is a running application backed by a temporary user file
type testEnv struct {
	router    http.Handler
	usersFile string
}

// setupTestApp builds the full router on a fresh user file in a temp directory
func setupTestApp(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	cfg, err := config.LoadTestConfig()
	require.NoError(t, err, "Failed to load test config")
	cfg.Storage.UsersFile = filepath.Join(t.TempDir(), "users.json")

	application, err := app.New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err, "Failed to build application")

	return &testEnv{router: application.Router, usersFile: cfg.Storage.UsersFile}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) token(t *testing.T, username, password string) string {
	t.Helper()
	rec := e.login(t, username, password)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

func (e *testEnv) listUsers(t *testing.T, token string) []models.UserListItem {
	t.Helper()
	rec := e.do(t, http.MethodGet, "/api/admin/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []models.UserListItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	return users
}

func TestIntegration_SeededAccounts(t *testing.T) {
	env := setupTestApp(t)

	adminToken := env.token(t, "admin", "Admin123")
	users := env.listUsers(t, adminToken)

	assert.Equal(t, []models.UserListItem{
		{Username: "admin", FullName: "Haupt-Administrator", Email: "admin@example.com", Role: models.RoleAdmin},
		{Username: "user", FullName: "Standard-Benutzer", Email: "user@example.com", Role: models.RoleUser},
	}, users)

	_, err := os.Stat(env.usersFile)
	assert.NoError(t, err)
}

func TestIntegration_Login(t *testing.T) {
	env := setupTestApp(t)

	tests := []struct {
		name           string
		username       string
		password       string
		expectedStatus int
		expectedRole   models.Role
	}{
		{name: "admin", username: "admin", password: "Admin123", expectedStatus: http.StatusOK, expectedRole: models.RoleAdmin},
		{name: "user with other case", username: "USER", password: "user123", expectedStatus: http.StatusOK, expectedRole: models.RoleUser},
		{name: "wrong password", username: "admin", password: "admin123", expectedStatus: http.StatusUnauthorized},
		{name: "unknown user", username: "ghost", password: "x", expectedStatus: http.StatusUnauthorized},
		{name: "missing fields", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.login(t, tt.username, tt.password)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp models.LoginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.AccessToken)
			assert.Equal(t, "bearer", resp.TokenType)
			assert.Equal(t, tt.expectedRole, resp.Role)
		})
	}
}

func TestIntegration_LookupRequiresToken(t *testing.T) {
	env := setupTestApp(t)

	rec := env.do(t, http.MethodGet, "/api/all_errors", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	rec = env.do(t, http.MethodGet, "/api/all_errors", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIntegration_Lookup(t *testing.T) {
	env := setupTestApp(t)
	token := env.token(t, "user", "user123")

	t.Run("search", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/search_errors?query=ERROR", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var result []string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Len(t, result, 10)
		for _, text := range result {
			assert.Contains(t, strings.ToLower(text), "error")
		}
	})

	t.Run("empty search", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/search_errors", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("all errors sorted", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/all_errors", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var result []string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Len(t, result, 58)
		assert.IsNonDecreasing(t, result)
	})

	t.Run("parts and schematic", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/parts", token, strings.NewReader(`{"error":"FPU overflow"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		var remedy models.RemedyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &remedy))
		assert.NotEqual(t, models.NoDataRemedy, remedy.Remedy)
		require.NotEmpty(t, remedy.Parts)

		rec = env.do(t, http.MethodPost, "/api/schematic", token, strings.NewReader(`{"part":"`+remedy.Parts[0]+`"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		var schematic models.SchematicResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schematic))
		require.NotNil(t, schematic.Schematic)
		assert.True(t, strings.HasPrefix(*schematic.Schematic, "plan_"))
	})

	t.Run("unknown error and part", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/parts", token, strings.NewReader(`{"error":"Unbekannter Fehler"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"remedy":"Keine Daten gefunden.","parts":[]}`, rec.Body.String())

		rec = env.do(t, http.MethodPost, "/api/schematic", token, strings.NewReader(`{"part":"Motor-99.9"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"schematic":null}`, rec.Body.String())
	})
}

func TestIntegration_UserManagement(t *testing.T) {
	env := setupTestApp(t)
	adminToken := env.token(t, "admin", "Admin123")

	// create, then duplicate in other case
	rec := env.do(t, http.MethodPost, "/api/admin/users", adminToken,
		strings.NewReader(`{"username":"Tech1","password":"geheim","role":"user","full_name":"Techniker"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/admin/users", adminToken,
		strings.NewReader(`{"username":"tech1","password":"anders","role":"admin"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	users := env.listUsers(t, adminToken)
	require.Len(t, users, 3)
	assert.Equal(t, "Tech1", users[2].Username)
	assert.Equal(t, models.RoleUser, users[2].Role)

	// the first password still works after the rejected duplicate
	techToken := env.token(t, "tech1", "geheim")

	// update via different case
	rec = env.do(t, http.MethodPut, "/api/admin/users/TECH1", adminToken,
		strings.NewReader(`{"new_password":"neu-geheim","new_role":"admin"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusUnauthorized, env.login(t, "tech1", "geheim").Code)
	newToken := env.token(t, "Tech1", "neu-geheim")
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/admin/check", newToken, nil).Code)

	// update of a missing user leaves the store untouched
	before, err := os.ReadFile(env.usersFile)
	require.NoError(t, err)
	rec = env.do(t, http.MethodPut, "/api/admin/users/ghost", adminToken, strings.NewReader(`{"new_role":"admin"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	after, err := os.ReadFile(env.usersFile)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// delete via different case invalidates outstanding tokens
	rec = env.do(t, http.MethodDelete, "/api/admin/users/tEcH1", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/all_errors", techToken, nil).Code)
	assert.Len(t, env.listUsers(t, adminToken), 2)

	rec = env.do(t, http.MethodDelete, "/api/admin/users/tech1", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIntegration_PrimaryAdminCannotBeDeleted(t *testing.T) {
	env := setupTestApp(t)
	adminToken := env.token(t, "admin", "Admin123")

	for _, name := range []string{"admin", "ADMIN", "Admin"} {
		rec := env.do(t, http.MethodDelete, "/api/admin/users/"+name, adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}

	// a second admin cannot delete it either
	rec := env.do(t, http.MethodPost, "/api/admin/users", adminToken,
		strings.NewReader(`{"username":"admin2","password":"pw","role":"admin"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	admin2Token := env.token(t, "admin2", "pw")
	rec = env.do(t, http.MethodDelete, "/api/admin/users/admin", admin2Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// and a regular user is stopped by the role check
	userToken := env.token(t, "user", "user123")
	rec = env.do(t, http.MethodDelete, "/api/admin/users/admin", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, "admin", env.listUsers(t, adminToken)[0].Username)
}

func TestIntegration_NonAdminForbidden(t *testing.T) {
	env := setupTestApp(t)
	userToken := env.token(t, "user", "user123")
	adminToken := env.token(t, "admin", "Admin123")

	before, err := os.ReadFile(env.usersFile)
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{method: http.MethodGet, path: "/api/admin/check"},
		{method: http.MethodGet, path: "/api/admin/users"},
		{method: http.MethodPost, path: "/api/admin/users", body: `{"username":"x","password":"y","role":"admin"}`},
		{method: http.MethodPut, path: "/api/admin/users/user", body: `{"new_role":"admin"}`},
		{method: http.MethodDelete, path: "/api/admin/users/user"},
		{method: http.MethodGet, path: "/api/admin/backup/users"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rec := env.do(t, tt.method, tt.path, userToken, body)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}

	after, err := os.ReadFile(env.usersFile)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, env.listUsers(t, adminToken), 2)
}

func TestIntegration_DisabledAccount(t *testing.T) {
	env := setupTestApp(t)
	adminToken := env.token(t, "admin", "Admin123")

	rec := env.do(t, http.MethodPut, "/api/admin/users/user", adminToken, strings.NewReader(`{"disabled":true}`))
	require.Equal(t, http.StatusOK, rec.Code)

	// login still succeeds, but the token is rejected
	userToken := env.token(t, "user", "user123")
	rec = env.do(t, http.MethodGet, "/api/all_errors", userToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"inactive user"}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/api/admin/users/user", adminToken, strings.NewReader(`{"disabled":false}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/all_errors", userToken, nil).Code)
}

func TestIntegration_Backup(t *testing.T) {
	env := setupTestApp(t)
	adminToken := env.token(t, "admin", "Admin123")

	rec := env.do(t, http.MethodGet, "/api/admin/backup/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=users_backup.json", rec.Header().Get("Content-Disposition"))

	onDisk, err := os.ReadFile(env.usersFile)
	require.NoError(t, err)
	assert.Equal(t, onDisk, rec.Body.Bytes())

	require.NoError(t, os.Remove(env.usersFile))
	rec = env.do(t, http.MethodGet, "/api/admin/backup/users", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIntegration_RestartKeepsUsers(t *testing.T) {
	env := setupTestApp(t)
	adminToken := env.token(t, "admin", "Admin123")

	rec := env.do(t, http.MethodPost, "/api/admin/users", adminToken,
		strings.NewReader(`{"username":"schicht2","password":"pw","role":"user"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	cfg, err := config.LoadTestConfig()
	require.NoError(t, err)
	cfg.Storage.UsersFile = env.usersFile
	restarted, err := app.New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	env2 := &testEnv{router: restarted.Router, usersFile: env.usersFile}
	assert.NotEmpty(t, env2.token(t, "SCHICHT2", "pw"))
	// tokens are stateless and survive the restart
	assert.Equal(t, http.StatusOK, env2.do(t, http.MethodGet, "/api/admin/check", adminToken, nil).Code)
}

func TestIntegration_HealthAndHeaders(t *testing.T) {
	env := setupTestApp(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
