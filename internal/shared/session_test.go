package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "volman_session", "test-secret", time.Hour, false), srv
}

func TestSessionRoundTrip(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	require.True(t, sess.isNew)

	sess.SetUser("42")
	sess.SetAccess("admin,event.hotels:read")
	sess.Set("theme", "dark")

	rec := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, rec, req, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "volman_session", cookies[0].Name)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	reloaded, err := manager.Load(ctx, next)
	require.NoError(t, err)
	require.False(t, reloaded.isNew)
	require.Equal(t, "42", reloaded.User())
	require.Equal(t, "admin,event.hotels:read", reloaded.Access())
	require.Equal(t, "dark", reloaded.Get("theme"))
}

func TestSessionFlashDeliveredOnce(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	sess.AddFlash(FlashMessage{Kind: "success", Message: "application received"})

	rec := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, rec, req, sess))
	cookie := rec.Result().Cookies()[0]

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	reloaded, err := manager.Load(ctx, next)
	require.NoError(t, err)
	flash := reloaded.PopFlash()
	require.NotNil(t, flash)
	require.Equal(t, "application received", flash.Message)
	require.Nil(t, reloaded.PopFlash())
}

func TestSessionDestroy(t *testing.T) {
	manager, srv := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("7")

	rec := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, rec, req, sess))
	require.True(t, srv.Exists("session:"+sess.ID))

	manager.Destroy(sess)
	rec = httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, rec, req, sess))
	require.False(t, srv.Exists("session:"+sess.ID))

	expired := rec.Result().Cookies()[0]
	require.Equal(t, -1, expired.MaxAge)
}

func TestRevokeUserDropsAllSessions(t *testing.T) {
	manager, srv := newTestManager(t)
	ctx := context.Background()

	var keep string
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		sess, err := manager.Load(ctx, req)
		require.NoError(t, err)
		if i == 2 {
			sess.SetUser("other")
			keep = sess.ID
		} else {
			sess.SetUser("42")
		}
		require.NoError(t, manager.Commit(ctx, httptest.NewRecorder(), req, sess))
	}

	require.NoError(t, manager.RevokeUser(ctx, "42"))
	require.True(t, srv.Exists("session:"+keep))

	remaining := 0
	for _, key := range srv.Keys() {
		if len(key) > 8 && key[:8] == "session:" {
			remaining++
		}
	}
	require.Equal(t, 1, remaining)
}
