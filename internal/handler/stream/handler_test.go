package stream

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mindfulai/mindful-shell/internal/model/profile"
	"github.com/mindfulai/mindful-shell/internal/model/resource"
	chatservice "github.com/mindfulai/mindful-shell/internal/service/chat"
	"github.com/mindfulai/mindful-shell/pkg/backend"
)

type echoBackend struct{}

func (echoBackend) Chat(_ context.Context, req backend.ChatRequest) (backend.ChatResponse, error) {
	return backend.ChatResponse{Message: "you said: " + req.Message}, nil
}

func (echoBackend) FetchProfile(context.Context) (profile.Patch, error) { return profile.Patch{}, nil }

func (echoBackend) PushProfile(context.Context, profile.Profile) error { return nil }

func (echoBackend) FetchResources(context.Context) (resource.Set, error) { return resource.Set{}, nil }

func TestEventsStreamUntilSessionEnds(t *testing.T) {
	svc := chatservice.NewService(echoBackend{})
	t.Cleanup(svc.Wait)

	r := chi.NewRouter()
	New(svc, zaptest.NewLogger(t)).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	snap, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/sessions/" + snap.ID + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	first, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: snapshot\n", first)

	_, err = svc.SendMessage(context.Background(), snap.ID, "hello")
	require.NoError(t, err)
	require.NoError(t, svc.EndSession(context.Background(), snap.ID))

	rest, err := io.ReadAll(reader)
	require.NoError(t, err)
	body := string(rest)

	assert.Contains(t, body, "event: message\n")
	assert.Contains(t, body, "event: typing\n")
	assert.Contains(t, body, "you said: hello")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(body), `{"sessionId":"`+snap.ID+`"}`))
}

func TestEventsUnknownSession(t *testing.T) {
	svc := chatservice.NewService(echoBackend{})
	r := chi.NewRouter()
	New(svc, zaptest.NewLogger(t)).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/sessions/missing/events", nil))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
