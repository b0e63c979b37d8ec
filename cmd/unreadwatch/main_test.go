package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points the CLI at a file store in a temp dir and a stub remote
// service reporting the count held in unread.
func setupEnv(t *testing.T, unread *atomic.Int64) string {
	t.Helper()

	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "UNREADWATCH_") {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(unread.Load())
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("UNREADWATCH_API_BASE_URL", srv.URL)
	t.Setenv("UNREADWATCH_STORE_DRIVER", "file")
	t.Setenv("UNREADWATCH_DB_PATH", filepath.Join(dir, "state.json"))
	t.Setenv("UNREADWATCH_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func runJSON[T any](t *testing.T, args ...string) T {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	return v
}

func TestCLI_SignInTickStatusSignOut(t *testing.T) {
	var unread atomic.Int64
	unread.Store(3)
	setupEnv(t, &unread)

	st := runJSON[statusOutput](t, "status")
	assert.False(t, st.SignedIn)

	res := runJSON[map[string]any](t, "tick")
	assert.Equal(t, "none", res["decision"])
	assert.Equal(t, false, res["polled"])

	out, err := run(t, "signin", "--api-key", "k1", "--address", "0xabc")
	require.NoError(t, err)
	assert.Contains(t, out, "signed in as 0xabc")

	res = runJSON[map[string]any](t, "tick")
	assert.Equal(t, "first_alert", res["decision"])
	assert.Equal(t, float64(3), res["count"])

	res = runJSON[map[string]any](t, "tick")
	assert.Equal(t, "none", res["decision"])

	unread.Store(5)
	res = runJSON[map[string]any](t, "tick")
	assert.Equal(t, "update", res["decision"])
	assert.Equal(t, float64(5), res["count"])

	st = runJSON[statusOutput](t, "status")
	assert.True(t, st.SignedIn)
	assert.Equal(t, "0xabc", st.Identity)
	assert.True(t, st.HasNotified)
	assert.Equal(t, 5, st.UnreadCount)
	assert.NotEmpty(t, st.UpdatedAt)

	_, err = run(t, "signout")
	require.NoError(t, err)

	st = runJSON[statusOutput](t, "status")
	assert.False(t, st.SignedIn)
	assert.False(t, st.HasNotified)
	assert.Zero(t, st.UnreadCount)
}

func TestCLI_BootstrapCredentialsFromEnv(t *testing.T) {
	var unread atomic.Int64
	unread.Store(1)
	setupEnv(t, &unread)
	t.Setenv("UNREADWATCH_API_KEY", "k1")
	t.Setenv("UNREADWATCH_ADDRESS", "0xabc")

	res := runJSON[map[string]any](t, "tick")
	assert.Equal(t, "first_alert", res["decision"])
}

func TestCLI_SignInRequiresFlags(t *testing.T) {
	var unread atomic.Int64
	setupEnv(t, &unread)

	_, err := run(t, "signin", "--api-key", "k1")
	require.Error(t, err)
}

func TestCLI_InvalidConfig(t *testing.T) {
	var unread atomic.Int64
	setupEnv(t, &unread)
	t.Setenv("UNREADWATCH_STORE_DRIVER", "postgres")

	_, err := run(t, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNREADWATCH_STORE_DRIVER")
}

func TestCLI_NotifyWritesInbox(t *testing.T) {
	var unread atomic.Int64
	dir := setupEnv(t, &unread)

	_, err := run(t, "notify")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "state.default.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Message Waiting at")
}

func TestCLI_InvalidSchedule(t *testing.T) {
	var unread atomic.Int64
	setupEnv(t, &unread)
	t.Setenv("UNREADWATCH_POLL_SCHEDULE", "whenever")

	_, err := run(t, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNREADWATCH_POLL_SCHEDULE")
}
