package chat

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

const (
	// Greeting opens every session as message 1.
	Greeting = "Hi, I'm your mental health assistant powered by MindfulAI. How are you feeling today?"
	// FallbackReply stands in for the bot when the backend call fails.
	FallbackReply = "I'm having trouble connecting. Please try again later."
)

// Message is one entry of a session's append-only chat log.
type Message struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tail returns a copy of the last n messages, or all of them when fewer exist.
func Tail(messages []Message, n int) []Message {
	if n <= 0 {
		return []Message{}
	}
	start := max(len(messages)-n, 0)
	out := make([]Message, len(messages)-start)
	copy(out, messages[start:])
	return out
}
