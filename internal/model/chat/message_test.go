package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTail(t *testing.T) {
	messages := make([]Message, 0, 7)
	for i := 1; i <= 7; i++ {
		messages = append(messages, Message{ID: i})
	}

	tail := Tail(messages, 5)
	assert.Len(t, tail, 5)
	assert.Equal(t, 3, tail[0].ID)
	assert.Equal(t, 7, tail[4].ID)

	tail[0].Content = "mutated"
	assert.Empty(t, messages[2].Content)

	assert.Len(t, Tail(messages[:2], 5), 2)
	assert.Empty(t, Tail(messages, 0))
}
