package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfulai/mindful-shell/internal/model/chat"
	"github.com/mindfulai/mindful-shell/internal/model/profile"
	"github.com/mindfulai/mindful-shell/internal/model/resource"
	chatService "github.com/mindfulai/mindful-shell/internal/service/chat"
	"github.com/mindfulai/mindful-shell/pkg/backend"
)

type scriptedBackend struct{}

func (scriptedBackend) Chat(_ context.Context, req backend.ChatRequest) (backend.ChatResponse, error) {
	feeling := "anxious"
	return backend.ChatResponse{
		Message:        "Tell me more about " + req.Message,
		ProfileUpdates: profile.Patch{FeelingToday: &feeling},
	}, nil
}

func (scriptedBackend) FetchProfile(context.Context) (profile.Patch, error) {
	name := "Sam"
	return profile.Patch{Name: &name}, nil
}

func (scriptedBackend) PushProfile(context.Context, profile.Profile) error { return nil }

func (scriptedBackend) FetchResources(context.Context) (resource.Set, error) {
	return resource.Set{Crisis: []resource.Link{{Name: "Local Hotline", Link: "tel:123"}}}, nil
}

func runScript(t *testing.T, script string) string {
	t.Helper()
	svc := chatService.NewService(scriptedBackend{})
	t.Cleanup(svc.Wait)

	var out bytes.Buffer
	require.NoError(t, newREPL(svc, strings.NewReader(script), &out).run(context.Background()))
	return out.String()
}

func TestREPLChatTurn(t *testing.T) {
	out := runScript(t, "   \nmy exams\n/profile\n/quit\nignored\n")

	assert.Contains(t, out, botLabel+": "+chat.Greeting)
	assert.Contains(t, out, botLabel+": Tell me more about my exams")
	assert.Contains(t, out, "Name: Sam")
	assert.Contains(t, out, "Feeling today: anxious")
	assert.Contains(t, out, "Take care.")
	assert.NotContains(t, out, "ignored")
}

func TestREPLResourcesFillDefaults(t *testing.T) {
	out := runScript(t, "/resources\n")

	assert.Contains(t, out, "Local Hotline (tel:123)")
	assert.Contains(t, out, "Anxiety Management Techniques (#)")
	assert.Contains(t, out, "Find a Therapist (#)")
}

func TestREPLFollowUp(t *testing.T) {
	out := runScript(t, "/followup\n")

	assert.Contains(t, out, "Follow-up scheduled for ")
}
