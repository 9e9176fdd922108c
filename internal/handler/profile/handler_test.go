package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	profileModel "github.com/mindfulai/mindful-shell/internal/model/profile"
	"github.com/mindfulai/mindful-shell/internal/model/resource"
	chatservice "github.com/mindfulai/mindful-shell/internal/service/chat"
	"github.com/mindfulai/mindful-shell/pkg/backend"
)

type recordingBackend struct {
	mu     sync.Mutex
	pushes []profileModel.Profile
}

func (*recordingBackend) Chat(context.Context, backend.ChatRequest) (backend.ChatResponse, error) {
	return backend.ChatResponse{Message: "ok"}, nil
}

func (*recordingBackend) FetchProfile(context.Context) (profileModel.Patch, error) {
	name := "Sam"
	return profileModel.Patch{Name: &name}, nil
}

func (b *recordingBackend) PushProfile(_ context.Context, p profileModel.Profile) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pushes = append(b.pushes, p)
	return nil
}

func (*recordingBackend) FetchResources(context.Context) (resource.Set, error) {
	return resource.Set{}, nil
}

func TestProfileRoutes(t *testing.T) {
	now := time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)
	fb := &recordingBackend{}
	svc := chatservice.NewService(fb, chatservice.WithClock(func() time.Time { return now }))
	t.Cleanup(svc.Wait)

	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)

	snap, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/sessions/"+snap.ID+"/profile", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var got profileModel.Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Sam", got.Name)
	assert.Empty(t, got.NextFollowUp)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/sessions/"+snap.ID+"/profile/follow-up", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "10/22/2026", got.NextFollowUp)

	svc.Wait()
	fb.mu.Lock()
	defer fb.mu.Unlock()
	require.Len(t, fb.pushes, 1)
	assert.Equal(t, "10/22/2026", fb.pushes[0].NextFollowUp)
}

func TestProfileUnknownSession(t *testing.T) {
	svc := chatservice.NewService(&recordingBackend{})
	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/sessions/nope/profile", nil),
		httptest.NewRequest(http.MethodPost, "/sessions/nope/profile/follow-up", nil),
	} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	}
}
