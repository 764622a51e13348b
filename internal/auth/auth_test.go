package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webtemplate-backend/internal/apperr"
	"webtemplate-backend/internal/config"
	"webtemplate-backend/internal/metadata"
	"webtemplate-backend/internal/store"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	tokens := NewTokenIssuer("secret")
	signed, err := tokens.Issue("u1", "a@b.c", []string{metadata.RoleWebsiteManager})
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, []string{metadata.RoleWebsiteManager}, claims.Roles)
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	signed, err := NewTokenIssuer("one").Issue("u1", "", nil)
	require.NoError(t, err)

	_, err = NewTokenIssuer("two").Parse(signed)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	tokens := NewTokenIssuer("secret")
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	signed, err := tokens.Issue("u1", "", nil)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret").Parse(signed)
	assert.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.True(t, CheckPassword("pw", hash))
	assert.False(t, CheckPassword("other", hash))
}

// errorHandler mirrors the server's AppError rendering.
func errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := apperr.As(err); ok {
		return c.Status(appErr.Status).JSON(apperr.ErrorResponse{Error: appErr})
	}
	return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
}

func newProtectedApp(tokens *TokenIssuer) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(Middleware(tokens))
	app.Get("/read", func(c *fiber.Ctx) error { return c.SendString(GetUser(c).ID) })
	app.Post("/write", RequireRole(metadata.RoleAdmin, metadata.RoleWebsiteManager), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokenIssuer("secret")
	app := newProtectedApp(tokens)

	guest, err := tokens.Issue("guest", "", []string{"guest"})
	require.NoError(t, err)
	manager, err := tokens.Issue("mgr", "", []string{metadata.RoleWebsiteManager})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"no header", http.MethodGet, "/read", "", 401},
		{"bad scheme", http.MethodGet, "/read", "Basic abc", 401},
		{"garbage token", http.MethodGet, "/read", "Bearer abc", 401},
		{"read as guest", http.MethodGet, "/read", "Bearer " + guest, 200},
		{"write as guest", http.MethodPost, "/write", "Bearer " + guest, 403},
		{"write as manager", http.MethodPost, "/write", "Bearer " + manager, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func newAuthApp(t *testing.T) *fiber.App {
	app, _ := newAuthHandler(t)
	return app
}

func newAuthHandler(t *testing.T) (*fiber.App, *Handler) {
	t.Helper()
	ctx := context.Background()
	s, err := store.New(ctx, config.DatabaseConfig{Driver: "sqlite", Path: t.TempDir(), Name: "auth"})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Bootstrap(ctx))

	h := NewHandler(s, NewTokenIssuer("secret"))
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	RegisterRoutes(app, h)
	return app, h
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestLoginRefreshLogout(t *testing.T) {
	app := newAuthApp(t)

	status, _ := postJSON(t, app, "/api/auth/login", `{"email":"admin@localhost","password":"wrong"}`)
	assert.Equal(t, 401, status)

	status, body := postJSON(t, app, "/api/auth/login", `{"email":"admin@localhost","password":"changeme"}`)
	require.Equal(t, 200, status)
	data := body["data"].(map[string]any)
	refresh := data["refresh_token"].(string)
	assert.NotEmpty(t, data["access_token"])

	status, body = postJSON(t, app, "/api/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	require.Equal(t, 200, status)
	rotated := body["data"].(map[string]any)["refresh_token"].(string)
	assert.NotEqual(t, refresh, rotated)

	// the old token was consumed
	status, _ = postJSON(t, app, "/api/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	assert.Equal(t, 401, status)

	status, _ = postJSON(t, app, "/api/auth/logout", `{"refresh_token":"`+rotated+`"}`)
	assert.Equal(t, 200, status)
	status, _ = postJSON(t, app, "/api/auth/refresh", `{"refresh_token":"`+rotated+`"}`)
	assert.Equal(t, 401, status)
}

func TestRefreshTokenConsumedOnce(t *testing.T) {
	app, h := newAuthHandler(t)
	ctx := context.Background()

	status, body := postJSON(t, app, "/api/auth/login", `{"email":"admin@localhost","password":"changeme"}`)
	require.Equal(t, 200, status)
	refresh := body["data"].(map[string]any)["refresh_token"].(string)

	row, err := store.QueryRow(ctx, h.store.DB,
		"SELECT id FROM _refresh_tokens WHERE token = "+h.store.Dialect.Placeholder(1), refresh)
	require.NoError(t, err)
	tokenID := row["id"].(string)

	// two requests that both read the row before either deletes it
	require.NoError(t, h.consumeRefreshToken(ctx, tokenID))
	err = h.consumeRefreshToken(ctx, tokenID)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "UNAUTHORIZED"))

	status, _ = postJSON(t, app, "/api/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	assert.Equal(t, 401, status)
}
