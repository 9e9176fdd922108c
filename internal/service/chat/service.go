package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindfulai/mindful-shell/internal/model/chat"
	"github.com/mindfulai/mindful-shell/internal/model/profile"
	"github.com/mindfulai/mindful-shell/internal/model/resource"
	"github.com/mindfulai/mindful-shell/pkg/backend"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	defaultHistoryWindow = 5
	defaultFollowUpDays  = 7
)

// Backend is the external chatbot API the controller talks to.
type Backend interface {
	Chat(ctx context.Context, req backend.ChatRequest) (backend.ChatResponse, error)
	FetchProfile(ctx context.Context) (profile.Patch, error)
	PushProfile(ctx context.Context, p profile.Profile) error
	FetchResources(ctx context.Context) (resource.Set, error)
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger used for swallowed backend errors.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHistoryWindow sets how many prior messages accompany each chat request.
func WithHistoryWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyWindow = n
		}
	}
}

// WithFollowUpDays sets how far ahead a follow-up is scheduled.
func WithFollowUpDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.followUpDays = days
		}
	}
}

// Service holds per-session chat state and drives the chatbot backend.
type Service struct {
	backend       Backend
	logger        *zap.Logger
	now           func() time.Time
	historyWindow int
	followUpDays  int

	mu       sync.RWMutex
	sessions map[string]*session

	writes sync.WaitGroup
}

type session struct {
	mu        sync.Mutex
	info      chat.Session
	messages  []chat.Message
	lastID    int
	pending   int
	profile   profile.Profile
	resources resource.Set
	hub       *hub
}

// NewService creates a controller backed by the given chatbot API.
func NewService(b Backend, opts ...Option) *Service {
	s := &Service{
		backend:       b,
		logger:        zap.NewNop(),
		now:           time.Now,
		historyWindow: defaultHistoryWindow,
		followUpDays:  defaultFollowUpDays,
		sessions:      make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession opens a session seeded with the greeting and merges the
// backend's copy of the profile. A failed profile fetch is logged only.
func (s *Service) CreateSession(ctx context.Context) (chat.Snapshot, error) {
	now := s.now()
	sess := &session{
		info:    chat.Session{ID: uuid.NewString(), CreatedAt: now.UTC()},
		profile: profile.New(now),
		hub:     newHub(),
	}
	sess.appendLocked(chat.SenderBot, chat.Greeting, now)

	s.mu.Lock()
	s.sessions[sess.info.ID] = sess
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("session", sess.info.ID))

	patch, err := s.backend.FetchProfile(ctx)
	if err != nil {
		s.logger.Warn("fetch profile failed", zap.String("session", sess.info.ID), zap.Error(err))
	} else {
		sess.mu.Lock()
		sess.profile = sess.profile.Merge(patch)
		s.publishLocked(sess, EventProfile, sess.profile)
		sess.mu.Unlock()
	}

	return sess.snapshot(), nil
}

// GetSession returns a snapshot of the session.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return chat.Snapshot{}, err
	}
	return sess.snapshot(), nil
}

// LoadTranscript returns the session's messages in order.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	copied := make([]chat.Message, len(sess.messages))
	copy(copied, sess.messages)
	return copied, nil
}

// EndSession drops the session and disconnects its subscribers.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.hub.close()
	s.logger.Info("session ended", zap.String("session", sessionID))
	return nil
}

// SendMessage runs one chat turn. Blank input is ignored and yields a nil
// turn. Backend failures are not returned: the turn completes with
// chat.FallbackReply instead. The backend call ignores cancellation of ctx.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (*chat.Turn, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	sess.mu.Lock()
	history := chat.Tail(sess.messages, s.historyWindow)
	userMsg := sess.appendLocked(chat.SenderUser, text, s.now())
	s.publishLocked(sess, EventMessage, userMsg)
	sess.pending++
	if sess.pending == 1 {
		s.publishLocked(sess, EventTyping, true)
	}
	sess.mu.Unlock()

	resp, err := s.backend.Chat(context.WithoutCancel(ctx), backend.NewChatRequest(text, history))

	now := s.now()
	sess.mu.Lock()
	defer sess.mu.Unlock()

	turn := &chat.Turn{User: userMsg}
	if err != nil {
		s.logger.Error("chat request failed", zap.String("session", sessionID), zap.Error(err))
		turn.Bot = sess.appendLocked(chat.SenderBot, chat.FallbackReply, now)
		turn.Failed = true
		s.publishLocked(sess, EventMessage, turn.Bot)
	} else {
		turn.Bot = sess.appendLocked(chat.SenderBot, resp.Message, now)
		s.publishLocked(sess, EventMessage, turn.Bot)

		if !resp.ProfileUpdates.Empty() {
			sess.profile = sess.profile.Merge(resp.ProfileUpdates).CheckIn(now)
			s.pushProfile(sessionID, sess.profile)
		}
		sess.profile = sess.profile.ScheduleFollowUp(now, s.followUpDays)
		s.publishLocked(sess, EventProfile, sess.profile)
	}

	sess.pending--
	if sess.pending == 0 {
		s.publishLocked(sess, EventTyping, false)
	}
	return turn, nil
}

// Profile returns the session's current profile.
func (s *Service) Profile(_ context.Context, sessionID string) (profile.Profile, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return profile.Profile{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.profile, nil
}

// ScheduleFollowUp moves the next follow-up out by the configured number of
// days and publishes the profile without waiting for the backend.
func (s *Service) ScheduleFollowUp(_ context.Context, sessionID string) (profile.Profile, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return profile.Profile{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.profile = sess.profile.ScheduleFollowUp(s.now(), s.followUpDays)
	s.pushProfile(sessionID, sess.profile)
	s.publishLocked(sess, EventProfile, sess.profile)
	return sess.profile, nil
}

// OpenResources refreshes the session's resource list and returns it with
// placeholders in every empty category. A failed fetch keeps the previous list.
func (s *Service) OpenResources(ctx context.Context, sessionID string) (resource.Set, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return resource.Set{}, err
	}

	set, err := s.backend.FetchResources(ctx)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		s.logger.Warn("fetch resources failed", zap.String("session", sessionID), zap.Error(err))
	} else {
		sess.resources = set
	}

	view := sess.resources.WithDefaults()
	s.publishLocked(sess, EventResources, view)
	return view, nil
}

// Subscribe streams the session's events until the returned cancel func is
// called or the session ends.
func (s *Service) Subscribe(sessionID string) (<-chan Event, func(), error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := sess.hub.subscribe()
	return ch, cancel, nil
}

// Wait blocks until every pending profile push has finished.
func (s *Service) Wait() {
	s.writes.Wait()
}

func (s *Service) lookup(sessionID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// pushProfile publishes p to the backend in the background; failures are only logged.
func (s *Service) pushProfile(sessionID string, p profile.Profile) {
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		if err := s.backend.PushProfile(context.Background(), p); err != nil {
			s.logger.Warn("push profile failed", zap.String("session", sessionID), zap.Error(err))
		}
	}()
}

func (s *Service) publishLocked(sess *session, typ EventType, data any) {
	sess.hub.publish(Event{
		Type:      typ,
		SessionID: sess.info.ID,
		Data:      data,
		Timestamp: s.now().UTC(),
	})
}

func (sess *session) appendLocked(sender chat.Sender, content string, now time.Time) chat.Message {
	sess.lastID++
	msg := chat.Message{
		ID:        sess.lastID,
		Content:   content,
		Sender:    sender,
		CreatedAt: now.UTC(),
	}
	sess.messages = append(sess.messages, msg)
	return msg
}

func (sess *session) snapshot() chat.Snapshot {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	messages := make([]chat.Message, len(sess.messages))
	copy(messages, sess.messages)
	return chat.Snapshot{
		Session:  sess.info,
		Messages: messages,
		Typing:   sess.pending > 0,
		Profile:  sess.profile,
	}
}
