package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"bookshare_backend/internal/auth"
	"bookshare_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_PROVIDER", config.AuthProviderJWT)
	t.Setenv("JWT_SECRET", "bookctl-test-secret")
	t.Setenv("JWT_ISSUER", "bookctl-test")
	t.Setenv("DB_DRIVER", config.DBDriverSQLite)
	t.Setenv("DB_SQLITE_PATH", filepath.Join(t.TempDir(), "bookshare.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCmd_IssuesVerifiableToken(t *testing.T) {
	setTestEnv(t)

	out, err := run(t, "token", "--subject", "dev-user", "--email", "dev@example.com", "--name", "Dev")
	require.NoError(t, err)

	var resp auth.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)

	cfg, err := config.Load()
	require.NoError(t, err)
	vt, err := auth.NewJWTService(cfg, zap.NewNop()).Verify(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "dev-user", vt.Identity.Subject)
	assert.Equal(t, "Dev", vt.Identity.Name)
}

func TestTokenCmd_RequiresSubject(t *testing.T) {
	setTestEnv(t)

	_, err := run(t, "token", "--email", "dev@example.com")
	assert.Error(t, err)
}

func TestMigrateAndAudit_OnEmptyStore(t *testing.T) {
	setTestEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema is up to date")

	out, err = run(t, "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "no violations")
}

func TestReindex_WithoutIndexFails(t *testing.T) {
	setTestEnv(t)
	t.Setenv("ELASTICSEARCH_URL", "")

	_, err := run(t, "reindex")
	assert.Error(t, err)
}
