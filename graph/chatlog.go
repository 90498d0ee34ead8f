package graph

import "github.com/google/uuid"

// ChatLog is the small per-execution identity record threaded through
// every node of one invocation. Build assigns it once, when the graph is
// compiled (not the master entry node), and it is treated as immutable
// thereafter.
type ChatLog struct {
	ChatID   string
	ThreadID string
}

// NewChatLog allocates a fresh chat log with generated identifiers.
func NewChatLog() *ChatLog {
	return &ChatLog{
		ChatID:   uuid.NewString(),
		ThreadID: uuid.NewString(),
	}
}
