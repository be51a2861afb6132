package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ogurasousui/codex-directory-client/internal/adapters/storage/memory"
	"github.com/ogurasousui/codex-directory-client/internal/core/session"
	"github.com/ogurasousui/codex-directory-client/internal/platform/apierror"
	"github.com/ogurasousui/codex-directory-client/internal/platform/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	revoked atomic.Bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		var creds session.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	case r.URL.Path == "/employees":
		if f.revoked.Load() || r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `[{"id":1,"name":"Ann","email":"a@x.com","department":"HR"}]`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestApp(t *testing.T, api http.Handler) (*App, *memory.SessionStorage) {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		API:     config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second},
		Storage: config.StorageConfig{Driver: config.StorageMemory},
		Notice:  config.NoticeConfig{TTL: time.Minute},
		Metrics: config.MetricsConfig{Enabled: true, Namespace: "test"},
	}
	storage := memory.NewSessionStorage()

	a, err := New(context.Background(), cfg, log, Options{Storage: storage})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	require.NoError(t, a.Start(context.Background()))

	return a, storage
}

func TestApp_LoginThenListUsesToken(t *testing.T) {
	t.Parallel()

	a, storage := newTestApp(t, &fakeAPI{})
	ctx := context.Background()

	require.NoError(t, a.Session.Login(ctx, session.Credentials{Email: "a@b.com", Password: "secret1"}))

	list, err := a.Employees.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ann", list[0].Name)

	p, _ := storage.Load(ctx)
	assert.Equal(t, "tok-1", p.Token)

	families, err := a.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestApp_RejectedTokenClearsSession(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	a, storage := newTestApp(t, api)
	ctx := context.Background()

	require.NoError(t, a.Session.Login(ctx, session.Credentials{Email: "a@b.com", Password: "secret1"}))
	api.revoked.Store(true)

	_, err := a.Employees.List(ctx)
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindAuth))

	assert.False(t, a.Session.Snapshot().IsAuthenticated)
	p, _ := storage.Load(ctx)
	assert.True(t, p.Empty())

	var messages []string
	for _, n := range a.Notices.Active() {
		messages = append(messages, n.Message)
	}
	assert.Contains(t, messages, session.MessageSessionExpired)
}

func TestApp_LoginFailureDoesNotClearSession(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, &fakeAPI{})
	ctx := context.Background()

	require.NoError(t, a.Session.Login(ctx, session.Credentials{Email: "a@b.com", Password: "secret1"}))
	err := a.Session.Login(ctx, session.Credentials{Email: "a@b.com", Password: "wrong"})
	require.Error(t, err)

	assert.True(t, a.Session.Snapshot().IsAuthenticated)
}

func TestNew_RejectsNilConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), nil, nil, Options{})
	assert.Error(t, err)
}
