package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"communityhub/internal/bootstrap"
	"communityhub/internal/config"
	"communityhub/internal/events"
	"communityhub/internal/featureflags"
	"communityhub/internal/session"
	"communityhub/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app      *fiber.App
	server   *Server
	recorder *events.Recorder
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()
	store := storage.New(storage.NewMemoryBackend(), storage.Options{})
	recorder := &events.Recorder{}
	rt := &bootstrap.Runtime{
		Config: &config.Config{
			Env:            "test",
			StoreBackend:   config.BackendMemory,
			AllowedOrigins: "http://localhost:5173",
		},
		Store:     store,
		Session:   session.ForStore(store),
		Publisher: recorder,
		Flags:     featureflags.NewManager(flags),
	}
	require.NoError(t, store.EnsureSeeded(context.Background()))

	s := NewServerWithRuntime(rt)
	app := NewApp()
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return &testEnv{app: app, server: s, recorder: recorder}
}

// do sends a request with an optional JSON body and returns the status and raw body.
func (e *testEnv) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// decode unmarshals a response body into T.
func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func (e *testEnv) login(t *testing.T, email string) {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "x"})
	require.Equal(t, http.StatusOK, status, string(body))
}

const (
	adminEmail = "admin@community.com"
	johnEmail  = "john@example.com"
)

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
