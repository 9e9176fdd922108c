package resource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfulai/mindful-shell/internal/model/profile"
	resourceModel "github.com/mindfulai/mindful-shell/internal/model/resource"
	chatservice "github.com/mindfulai/mindful-shell/internal/service/chat"
	"github.com/mindfulai/mindful-shell/pkg/backend"
)

type resourceBackend struct {
	set resourceModel.Set
	err error
}

func (resourceBackend) Chat(context.Context, backend.ChatRequest) (backend.ChatResponse, error) {
	return backend.ChatResponse{}, nil
}

func (resourceBackend) FetchProfile(context.Context) (profile.Patch, error) {
	return profile.Patch{}, nil
}

func (resourceBackend) PushProfile(context.Context, profile.Profile) error { return nil }

func (b resourceBackend) FetchResources(context.Context) (resourceModel.Set, error) {
	return b.set, b.err
}

func openResources(t *testing.T, b chatservice.Backend) resourceModel.Set {
	t.Helper()
	svc := chatservice.NewService(b)
	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)

	snap, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/sessions/"+snap.ID+"/resources", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var set resourceModel.Set
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&set))
	return set
}

func TestOpenResourcesFromBackend(t *testing.T) {
	professional := []resourceModel.Link{{Name: "Mental Health America", Link: "https://www.mhanational.org/finding-therapy"}}

	set := openResources(t, resourceBackend{set: resourceModel.Set{Professional: professional}})

	assert.Equal(t, professional, set.Professional)
	assert.Equal(t, resourceModel.Defaults().Crisis, set.Crisis)
}

func TestOpenResourcesBackendDown(t *testing.T) {
	set := openResources(t, resourceBackend{err: errors.New("timeout")})
	assert.Equal(t, resourceModel.Defaults(), set)
}
