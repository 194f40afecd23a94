package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"communityhub/internal/bootstrap"
	"communityhub/internal/config"
	"communityhub/internal/events"
	"communityhub/internal/featureflags"
	"communityhub/internal/models"
	"communityhub/internal/server"
	"communityhub/internal/session"
	"communityhub/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_ManualFlushPersistsOnShutdown(t *testing.T) {
	backend := storage.NewMemoryBackend()
	store := storage.New(backend, storage.Options{FlushMode: storage.FlushManual})
	rt := &bootstrap.Runtime{
		Config:    &config.Config{Env: "test", StoreBackend: config.BackendMemory},
		Store:     store,
		Session:   session.ForStore(store),
		Publisher: events.Nop{},
		Flags:     featureflags.NewManager(""),
	}
	srv := server.NewServerWithRuntime(rt)
	app := server.NewApp()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- serve(ctx, app, ln, srv.Shutdown) }()

	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	base := "http://" + ln.Addr().String()
	post := func(path string, body any) int {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		resp, err := client.Post(base+path, "application/json", &buf)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/health/live")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	require.Equal(t, http.StatusOK, post("/api/auth/login", map[string]string{"email": "john@example.com"}))
	require.Equal(t, http.StatusNoContent, post("/api/posts/2/share", nil))

	// Manual mode keeps the share in memory until shutdown.
	before, err := storage.New(backend, storage.Options{}).LoadPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sharesOf(before, "2"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not return after shutdown")
	}

	after, err := storage.New(backend, storage.Options{}).LoadPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sharesOf(after, "2"))
}

func sharesOf(posts []models.Post, id string) int {
	for _, p := range posts {
		if p.ID == id {
			return p.Shares
		}
	}
	return -1
}
