package chat

import (
	"time"

	"github.com/mindfulai/mindful-shell/internal/model/profile"
)

// Session captures a transient anonymous conversation.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is a point-in-time copy of a session's widget state.
type Snapshot struct {
	Session
	Messages []Message       `json:"messages"`
	Typing   bool            `json:"typing"`
	Profile  profile.Profile `json:"profile"`
}

// Turn pairs a user message with the bot message that answered it.
type Turn struct {
	User Message `json:"user"`
	Bot  Message `json:"bot"`
	// Failed reports that Bot carries FallbackReply.
	Failed bool `json:"failed"`
}
