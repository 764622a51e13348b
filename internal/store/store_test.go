package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webtemplate-backend/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := New(ctx, config.DatabaseConfig{Driver: "sqlite", Path: t.TempDir(), Name: "test"})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Bootstrap(ctx))
	return s
}

func TestBootstrap_SeedsAdminOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// second run must not add another user
	require.NoError(t, s.Bootstrap(ctx))

	rows, err := QueryRows(ctx, s.DB, "SELECT email, roles, active FROM _users")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	NormalizeBooleans(rows, []string{"active"})

	assert.Equal(t, "admin@localhost", rows[0]["email"])
	assert.Equal(t, true, rows[0]["active"])
	roles, err := s.Dialect.ScanArray(rows[0]["roles"])
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, roles)
}

func TestQueryRow_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := QueryRow(context.Background(), s.DB, "SELECT name FROM _web_templates WHERE name = ?1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMapError_UniqueViolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insert := "INSERT INTO _web_templates (name, type) VALUES (?1, ?2)"

	_, err := Exec(ctx, s.DB, insert, "Hero", "Section")
	require.NoError(t, err)
	_, err = Exec(ctx, s.DB, insert, "Hero", "Section")
	require.Error(t, err)
	assert.True(t, errors.Is(MapError(s.Dialect, err), ErrUniqueViolation))
}

func TestParamBuilder(t *testing.T) {
	pg := NewDialect("postgres").NewParamBuilder()
	assert.Equal(t, "$1", pg.Add("a"))
	assert.Equal(t, "$2", pg.Add(2))
	assert.Equal(t, []any{"a", 2}, pg.Params())

	lite := NewDialect("sqlite").NewParamBuilder()
	assert.Equal(t, "?1", lite.Add("a"))
	assert.Equal(t, 1, lite.Count())
}

func TestScanArray(t *testing.T) {
	pg := &PostgresDialect{}
	got, err := pg.ScanArray("{admin,website_manager}")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "website_manager"}, got)

	lite := &SQLiteDialect{}
	got, err = lite.ScanArray(lite.ArrayParam([]string{"a", "b"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestToTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	for _, v := range []any{want, "2024-05-01 10:30:00", "2024-05-01T10:30:00Z", []byte("2024-05-01T10:30:00Z")} {
		got, ok := ToTime(v)
		require.True(t, ok, "%v", v)
		assert.True(t, want.Equal(got), "%v", v)
	}

	_, ok := ToTime(nil)
	assert.False(t, ok)
	_, ok = ToTime("not a time")
	assert.False(t, ok)
}
