// Package backend is the HTTP client for the external MindfulAI chatbot API.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mindfulai/mindful-shell/internal/model/chat"
	"github.com/mindfulai/mindful-shell/internal/model/profile"
	"github.com/mindfulai/mindful-shell/internal/model/resource"
)

const (
	chatPath      = "/api/chat"
	profilePath   = "/api/profile"
	resourcesPath = "/api/resources"
	healthPath    = "/health"
)

var (
	// ErrStatus wraps any non-2xx answer from the backend.
	ErrStatus = errors.New("backend returned error status")
	// ErrMalformed wraps bodies that do not decode into the expected shape.
	ErrMalformed = errors.New("malformed backend response")
)

// HistoryEntry is the wire form of a prior message sent as chat context.
type HistoryEntry struct {
	ID      int         `json:"id"`
	Content string      `json:"content"`
	Sender  chat.Sender `json:"sender"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string         `json:"message"`
	History []HistoryEntry `json:"history"`
}

// ChatResponse is the decoded answer of POST /api/chat.
type ChatResponse struct {
	Message        string        `json:"message"`
	ProfileUpdates profile.Patch `json:"profile_updates"`
}

// NewChatRequest builds a request carrying text and the given prior messages.
func NewChatRequest(text string, history []chat.Message) ChatRequest {
	entries := make([]HistoryEntry, 0, len(history))
	for _, msg := range history {
		entries = append(entries, HistoryEntry{ID: msg.ID, Content: msg.Content, Sender: msg.Sender})
	}
	return ChatRequest{Message: text, History: entries}
}

// Client talks to the chatbot backend. It performs no retries.
type Client struct {
	http *resty.Client
}

// NewClient creates a client for baseURL. A zero timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{http: httpClient}
}

// Chat sends one user message with its context and returns the bot reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	var wire struct {
		Message        *string       `json:"message"`
		ProfileUpdates profile.Patch `json:"profile_updates"`
	}
	if err := c.do(ctx, resty.MethodPost, chatPath, req, &wire); err != nil {
		return ChatResponse{}, err
	}
	if wire.Message == nil {
		return ChatResponse{}, fmt.Errorf("%w: chat reply has no message", ErrMalformed)
	}
	return ChatResponse{Message: *wire.Message, ProfileUpdates: wire.ProfileUpdates}, nil
}

// FetchProfile returns the backend's (possibly partial) copy of the profile.
func (c *Client) FetchProfile(ctx context.Context) (profile.Patch, error) {
	var patch profile.Patch
	if err := c.do(ctx, resty.MethodGet, profilePath, nil, &patch); err != nil {
		return profile.Patch{}, err
	}
	return patch, nil
}

// PushProfile publishes the full local profile. The response body is ignored.
func (c *Client) PushProfile(ctx context.Context, p profile.Profile) error {
	return c.do(ctx, resty.MethodPost, profilePath, p, nil)
}

// FetchResources returns the current support resource list.
func (c *Client) FetchResources(ctx context.Context) (resource.Set, error) {
	var set resource.Set
	if err := c.do(ctx, resty.MethodGet, resourcesPath, nil, &set); err != nil {
		return resource.Set{}, err
	}
	return set, nil
}

// Health returns the backend's health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	status := map[string]any{}
	if err := c.do(ctx, resty.MethodGet, healthPath, nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s %s: %w: %s", method, path, ErrStatus, resp.Status())
	}
	if out == nil {
		return nil
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrMalformed, err)
	}
	return nil
}
